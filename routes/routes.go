package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/punchlemon/ft-transcendence-sub001/handlers"
	"github.com/punchlemon/ft-transcendence-sub001/middleware"
)

// SetupRoutes mounts every HTTP route on the router. Bracket and standings
// reads are public; anything that mutates state requires a valid token.
func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	friendHandler *handlers.FriendHandler,
	chatHandler *handlers.ChatHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", userHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", userHandler.Me)
			r.Get("/search", userHandler.Search)
			r.Put("/me/avatar", userHandler.UploadAvatar)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/{tournamentID}/standings", tournamentHandler.Standings)
		r.Get("/{tournamentID}/matches", matchHandler.ListByTournament)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", tournamentHandler.Create)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{matchID}/result", matchHandler.SubmitResult)
		})
	})

	router.Route("/friends", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", friendHandler.List)
		r.Post("/requests", friendHandler.SendRequest)
		r.Put("/requests/{friendshipID}", friendHandler.Respond)
	})

	router.Route("/chat", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/{userID}/messages", chatHandler.SendMessage)
		r.Get("/{userID}/messages", chatHandler.Conversation)
	})

	router.Route("/ws", func(r chi.Router) {
		r.Get("/tournaments/{tournamentID}", webSocketHandler.SubscribeTournament)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", webSocketHandler.SubscribeUser)
		})
	})
}
