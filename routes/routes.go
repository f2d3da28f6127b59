package routes

import (
	"net/http"

	"github.com/Dosada05/lobby-royale/handlers"
	"github.com/Dosada05/lobby-royale/middleware"
	"github.com/Dosada05/lobby-royale/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/lobby-royale/docs"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

func SetupRoutes(
	r chi.Router,
	opts Options,
	bracketHandler *handlers.BracketHandler,
	scoreHandler *handlers.ScoreHandler,
	disputeHandler *handlers.DisputeHandler,
	tournamentHandler *handlers.TournamentHandler,
) {
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Get("/", tournamentHandler.GetByIDHandler)
		r.Get("/bracket", bracketHandler.GetBracketHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)

			r.Post("/bracket", bracketHandler.GenerateBracketHandler)
			r.Post("/bracket/export", bracketHandler.ExportBracketHandler)
			r.Patch("/status", tournamentHandler.UpdateStatusHandler)
			r.Post("/random-teams", tournamentHandler.FormRandomTeamsHandler)
		})
	})

	r.Route("/lobbies/{lobbyID}", func(r chi.Router) {
		r.Get("/", bracketHandler.GetLobbyHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/reports", scoreHandler.SubmitReportHandler)
			r.With(adminOnly).Post("/results", scoreHandler.ConfirmResultsHandler)
		})
	})

	r.Route("/disputes/{disputeID}", func(r chi.Router) {
		r.Use(authenticate, adminOnly)

		r.Get("/", disputeHandler.GetDisputeHandler)
		r.Post("/resolve", disputeHandler.ResolveDisputeHandler)
		r.Post("/dismiss", disputeHandler.DismissDisputeHandler)
	})
}
