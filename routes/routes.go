package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/arman-dev/playoff-system/handlers"
	"github.com/arman-dev/playoff-system/middleware"
	"github.com/arman-dev/playoff-system/models"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Tournament  *handlers.TournamentHandler
	Participant *handlers.ParticipantHandler
	Match       *handlers.MatchHandler
	Leaderboard *handlers.LeaderboardHandler
	Format      *handlers.FormatHandler
	WebSocket   *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, auth *middleware.Auth) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Get("/confirm-email", h.Auth.ConfirmEmail)
		r.Post("/request-password-reset", h.Auth.RequestPasswordReset)
		r.Post("/reset-password", h.Auth.ResetPassword)
	})

	router.Route("/users", func(r chi.Router) {
		r.Get("/{id}", h.User.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Put("/{id}", h.User.Update)
			r.Post("/{id}/avatar", h.User.UploadAvatar)
		})
	})

	router.Route("/formats", func(r chi.Router) {
		r.Get("/", h.Format.List)
		r.Get("/{id}", h.Format.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(models.RoleAdmin))
			r.Post("/", h.Format.Create)
			r.Delete("/{id}", h.Format.Delete)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.Get("/{id}", h.Tournament.Get)
		r.Get("/{id}/bracket", h.Tournament.GetBracket)
		r.Get("/{id}/matches", h.Match.ListByTournament)
		r.Get("/{id}/matches/{matchID}", h.Match.Get)
		r.Get("/{id}/participants", h.Participant.ListByTournament)
		r.Get("/{id}/leaderboard", h.Leaderboard.GetTournamentLeaderboard)
		r.Get("/{id}/ws", h.WebSocket.Subscribe)

		// Any authenticated user can apply for the roster or withdraw.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/{id}/participants", h.Participant.Register)
			r.Delete("/{id}/participants/{participantID}", h.Participant.Withdraw)
		})

		// Organizer-side routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(models.RoleOrganizer, models.RoleAdmin))

			r.Post("/", h.Tournament.Create)
			r.Put("/{id}", h.Tournament.Update)
			r.Delete("/{id}", h.Tournament.Delete)
			r.Patch("/{id}/status", h.Tournament.UpdateStatus)
			r.Post("/{id}/logo", h.Tournament.UploadLogo)

			r.Post("/{id}/bracket", h.Tournament.GenerateBracket)
			r.Post("/{id}/bracket/regenerate", h.Tournament.RegenerateBracket)

			r.Patch("/{id}/participants/{participantID}/confirm", h.Participant.Confirm)
			r.Patch("/{id}/participants/{participantID}/seed", h.Participant.AssignSeed)

			r.Post("/{id}/matches/{matchID}/result", h.Match.ReportResult)
		})
	})

	return router
}
