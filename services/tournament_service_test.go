package services

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/punchlemon/ft-transcendence-sub001/brackets"
	"github.com/punchlemon/ft-transcendence-sub001/models"
	"github.com/punchlemon/ft-transcendence-sub001/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParticipantRepo struct {
	participants map[int]*models.Participant
	nextID       int
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[int]*models.Participant), nextID: 1}
}

func (r *fakeParticipantRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Participant) error {
	for _, existing := range r.participants {
		if existing.TournamentID == p.TournamentID && existing.Alias == p.Alias {
			return repositories.ErrParticipantAliasConflict
		}
	}
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	r.nextID++
	copied := *p
	r.participants[p.ID] = &copied
	return nil
}

func (r *fakeParticipantRepo) FindByID(_ context.Context, id int) (*models.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeParticipantRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Participant, error) {
	out := make([]*models.Participant, 0)
	for _, p := range r.participants {
		if p.TournamentID == tournamentID {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Seed != nil && b.Seed != nil && *a.Seed != *b.Seed:
			return *a.Seed < *b.Seed
		case a.Seed != nil && b.Seed == nil:
			return true
		case a.Seed == nil && b.Seed != nil:
			return false
		}
		return a.ID < b.ID
	})
	return out, nil
}

type tournamentFixture struct {
	svc             TournamentService
	matchSvc        MatchService
	tournamentRepo  *fakeTournamentRepo
	participantRepo *fakeParticipantRepo
	matchRepo       *fakeMatchRepo
	hub             *fakeBroadcaster
	mock            sqlmock.Sqlmock
}

func newTournamentFixture(t *testing.T) *tournamentFixture {
	t.Helper()
	db, mock := newMockDB(t)

	tournamentRepo := newFakeTournamentRepo()
	participantRepo := newFakeParticipantRepo()
	matchRepo := newFakeMatchRepo()
	hub := &fakeBroadcaster{}
	bracketSvc := NewBracketService(participantRepo, matchRepo, brackets.NewSingleElimination())

	return &tournamentFixture{
		svc: NewTournamentService(
			db, tournamentRepo, participantRepo, matchRepo, bracketSvc, hub, testLogger(),
		),
		matchSvc:        NewMatchService(db, matchRepo, participantRepo, tournamentRepo, hub, testLogger()),
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		hub:             hub,
		mock:            mock,
	}
}

func participantInputs(aliases ...string) []ParticipantInput {
	inputs := make([]ParticipantInput, 0, len(aliases))
	for _, alias := range aliases {
		inputs = append(inputs, ParticipantInput{Alias: alias})
	}
	return inputs
}

func TestCreateTournamentBuildsFullBracket(t *testing.T) {
	fx := newTournamentFixture(t)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	view, err := fx.svc.CreateTournament(context.Background(), 1, CreateTournamentInput{
		Name:         "Lunch Pong Cup",
		Participants: participantInputs("alice", "bob", "carol", "dave", "eve"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.TournamentStatusReady, view.Tournament.Status)

	// Five seeded players plus three AI substitutes; the placeholder
	// sentinel is never listed.
	require.Len(t, view.Participants, 8)
	aiCount := 0
	for _, p := range view.Participants {
		assert.NotEqual(t, models.ParticipantPlaceholder, p.State)
		if p.State == models.ParticipantAI {
			aiCount++
		}
	}
	assert.Equal(t, 3, aiCount)

	// A full 8-slot bracket: 4 + 2 + 1 matches, ordered by round then id.
	require.Len(t, view.Matches, 7)
	rounds := make(map[int]int)
	for _, m := range view.Matches {
		rounds[m.Round]++
		assert.Equal(t, models.MatchStatusPending, m.Status)
	}
	assert.Equal(t, map[int]int{1: 4, 2: 2, 3: 1}, rounds)

	// Round 1 has no unresolved slots; later rounds hold the sentinel.
	byID := make(map[int]MatchView)
	for _, m := range view.Matches {
		byID[m.ID] = m
	}
	for _, m := range view.Matches {
		require.NotNil(t, m.PlayerA)
		require.NotNil(t, m.PlayerB)
		if m.Round == 1 {
			assert.NotEqual(t, models.ParticipantPlaceholder, m.PlayerA.State)
			assert.NotEqual(t, models.ParticipantPlaceholder, m.PlayerB.State)
		} else {
			assert.Equal(t, models.ParticipantPlaceholder, m.PlayerA.State)
			assert.Equal(t, "TBD", m.PlayerA.Alias)
		}

		if m.Round == 3 {
			assert.Nil(t, m.FeedsIntoMatchID)
		} else {
			require.NotNil(t, m.FeedsIntoMatchID)
			require.NotNil(t, m.FeedsIntoSlot)
			target, ok := byID[*m.FeedsIntoMatchID]
			require.True(t, ok)
			assert.Equal(t, m.Round+1, target.Round)
		}
	}

	// Top seed faces an AI opponent in round 1.
	opener := view.Matches[0]
	assert.Equal(t, "alice", opener.PlayerA.Alias)
	assert.Equal(t, models.ParticipantAI, opener.PlayerB.State)

	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestCreateTournamentSingleParticipantStaysDraft(t *testing.T) {
	fx := newTournamentFixture(t)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	view, err := fx.svc.CreateTournament(context.Background(), 1, CreateTournamentInput{
		Name:         "Solo",
		Participants: participantInputs("alice"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.TournamentStatusDraft, view.Tournament.Status)
	assert.Len(t, view.Participants, 1)
	assert.Empty(t, view.Matches)
}

func TestCreateTournamentValidation(t *testing.T) {
	manyAliases := make([]string, 65)
	for i := range manyAliases {
		manyAliases[i] = fmt.Sprintf("p%d", i)
	}

	tests := []struct {
		name    string
		input   CreateTournamentInput
		wantErr error
	}{
		{
			name:    "empty name",
			input:   CreateTournamentInput{Name: "  ", Participants: participantInputs("a", "b")},
			wantErr: ErrTournamentNameRequired,
		},
		{
			name:    "unsupported bracket kind",
			input:   CreateTournamentInput{Name: "x", BracketKind: "round_robin", Participants: participantInputs("a", "b")},
			wantErr: ErrBracketKindUnsupported,
		},
		{
			name:    "no participants",
			input:   CreateTournamentInput{Name: "x"},
			wantErr: ErrParticipantsRequired,
		},
		{
			name:    "too many participants",
			input:   CreateTournamentInput{Name: "x", Participants: participantInputs(manyAliases...)},
			wantErr: ErrTooManyParticipants,
		},
		{
			name:    "empty alias",
			input:   CreateTournamentInput{Name: "x", Participants: participantInputs("a", "")},
			wantErr: ErrParticipantAliasRequired,
		},
		{
			name:    "duplicate alias",
			input:   CreateTournamentInput{Name: "x", Participants: participantInputs("a", "a")},
			wantErr: ErrParticipantAliasConflict,
		},
		{
			name:    "reserved alias",
			input:   CreateTournamentInput{Name: "x", Participants: participantInputs("a", "TBD")},
			wantErr: ErrParticipantAliasConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newTournamentFixture(t)
			_, err := fx.svc.CreateTournament(context.Background(), 1, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			// Validation failures never open a transaction.
			assert.NoError(t, fx.mock.ExpectationsWereMet())
		})
	}
}

func TestCreateTournamentAliasesAreCaseSensitive(t *testing.T) {
	fx := newTournamentFixture(t)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	view, err := fx.svc.CreateTournament(context.Background(), 1, CreateTournamentInput{
		Name:         "Casing",
		Participants: participantInputs("Alice", "alice"),
	})
	require.NoError(t, err)
	assert.Len(t, view.Participants, 2)
}

func TestGetTournamentByIDNotFound(t *testing.T) {
	fx := newTournamentFixture(t)
	_, err := fx.svc.GetTournamentByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

// Plays a 4-player tournament to completion through the result recorder and
// checks the derived standings against the §4.3-style accumulation rules.
func TestTournamentPlayThroughStandings(t *testing.T) {
	fx := newTournamentFixture(t)
	// One transaction for creation, one per submitted result.
	for i := 0; i < 4; i++ {
		fx.mock.ExpectBegin()
		fx.mock.ExpectCommit()
	}

	view, err := fx.svc.CreateTournament(context.Background(), 1, CreateTournamentInput{
		Name:         "Play-through",
		Participants: participantInputs("A", "B", "C", "D"),
	})
	require.NoError(t, err)
	require.Len(t, view.Matches, 3)

	submit := func(m MatchView, winnerAlias string, scoreA, scoreB int) {
		t.Helper()
		winnerID := 0
		for _, slot := range []*SlotView{m.PlayerA, m.PlayerB} {
			if slot != nil && slot.Alias == winnerAlias {
				winnerID = slot.ParticipantID
			}
		}
		require.NotZero(t, winnerID, "winner %s not found in match %d", winnerAlias, m.ID)
		_, err := fx.matchSvc.SubmitResult(context.Background(), m.ID, SubmitResultInput{
			WinnerID: winnerID, ScoreA: &scoreA, ScoreB: &scoreB,
		})
		require.NoError(t, err)
	}

	// Seeding pairs A-D and B-C in round 1.
	submit(view.Matches[0], "A", 11, 5)
	submit(view.Matches[1], "C", 9, 11)

	view, err = fx.svc.GetTournamentByID(context.Background(), view.Tournament.ID)
	require.NoError(t, err)
	final := view.Matches[2]
	require.NotNil(t, final.PlayerA)
	require.NotNil(t, final.PlayerB)
	assert.Equal(t, "A", final.PlayerA.Alias)
	assert.Equal(t, "C", final.PlayerB.Alias)

	submit(final, "A", 11, 7)

	assert.Equal(t, models.TournamentStatusCompleted, fx.tournamentRepo.statuses[view.Tournament.ID])

	standings, err := fx.svc.Standings(context.Background(), view.Tournament.ID)
	require.NoError(t, err)
	require.Len(t, standings, 4)

	assert.Equal(t, "A", standings[0].Alias)
	assert.True(t, standings[0].Winner)
	assert.Equal(t, 22, standings[0].TotalScore)

	assert.Equal(t, "C", standings[1].Alias)
	assert.Equal(t, 2, standings[1].MaxRound)
	assert.Equal(t, 18, standings[1].TotalScore)

	// Both lost in round 1; the higher total score ranks first.
	assert.Equal(t, "B", standings[2].Alias)
	assert.Equal(t, 9, standings[2].TotalScore)
	assert.Equal(t, "D", standings[3].Alias)
	assert.Equal(t, 5, standings[3].TotalScore)

	assert.NoError(t, fx.mock.ExpectationsWereMet())
}
