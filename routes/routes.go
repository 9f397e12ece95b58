package routes

import (
	"time"

	"github.com/Maheshlee007/tkd-drawsheet/handlers"
	"github.com/Maheshlee007/tkd-drawsheet/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	bracketHandler *handlers.BracketHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(middleware.RateLimit(120, time.Minute))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/tournaments", func(r chi.Router) {
		// Public read access to drawsheets.
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/started", bracketHandler.StartedHandler)
		r.Get("/{tournamentID}/export", tournamentHandler.ExportHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/", tournamentHandler.CreateHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)
			r.Post("/{tournamentID}/export", tournamentHandler.UploadExportHandler)

			r.Patch("/{tournamentID}/matches/{matchID}/rounds", bracketHandler.ScoreRoundHandler)
			r.Post("/{tournamentID}/matches/{matchID}/result", bracketHandler.SubmitResultHandler)
			r.Put("/{tournamentID}/matches/{matchID}/winner", bracketHandler.OverrideWinnerHandler)

			r.Post("/{tournamentID}/participants", bracketHandler.AddParticipantHandler)
			r.Delete("/{tournamentID}/participants/{name}", bracketHandler.RemoveParticipantHandler)
			r.Patch("/{tournamentID}/participants/{name}", bracketHandler.RenameParticipantHandler)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
