package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/league-system/docs"
	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/middleware"
	"github.com/Dosada05/league-system/models"
)

// Handlers собирает все HTTP-обработчики приложения.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Tenant    *handlers.TenantHandler
	User      *handlers.UserHandler
	Group     *handlers.GroupHandler
	Team      *handlers.TeamHandler
	Player    *handlers.PlayerHandler
	Match     *handlers.MatchHandler
	Standings *handlers.StandingsHandler
	Backup    *handlers.BackupHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, h Handlers, jwtSecret string, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Post("/auth/login", h.Auth.Login)

	writers := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)
	superAdmin := middleware.RequireRole(models.RoleSuperAdmin)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Get("/ws/tenants/{tenantID}", h.WebSocket.ServeWs)

		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", h.Tenant.ListTenants)
			r.Get("/{tenantID}", h.Tenant.GetTenantByID)
			r.With(superAdmin).Post("/", h.Tenant.CreateTenant)
			r.With(superAdmin).Delete("/{tenantID}", h.Tenant.DeleteTenant)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", h.User.GetMe)
			r.Group(func(r chi.Router) {
				r.Use(writers)
				r.Get("/", h.User.ListUsers)
				r.Post("/", h.User.CreateUser)
				r.Get("/{userID}", h.User.GetUserByID)
				r.Delete("/{userID}", h.User.DeleteUser)
			})
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", h.Group.ListGroups)
			r.Get("/{groupID}", h.Group.GetGroupByID)
			r.Group(func(r chi.Router) {
				r.Use(writers)
				r.Post("/", h.Group.CreateGroup)
				r.Put("/{groupID}", h.Group.RenameGroup)
				r.Delete("/{groupID}", h.Group.DeleteGroup)
				r.Post("/{groupID}/fixtures", h.Match.GenerateFixtures)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.Team.ListTeams)
			r.Get("/{teamID}", h.Team.GetTeamByID)
			r.Get("/{teamID}/players", h.Team.ListPlayers)
			r.Group(func(r chi.Router) {
				r.Use(writers)
				r.Post("/", h.Team.CreateTeam)
				r.Patch("/{teamID}", h.Team.UpdateTeam)
				r.Delete("/{teamID}", h.Team.DeleteTeam)
				r.Post("/{teamID}/players", h.Team.AddPlayer)
			})
		})

		r.Route("/players", func(r chi.Router) {
			r.Get("/{playerID}", h.Player.GetPlayerByID)
			r.With(writers).Put("/{playerID}", h.Player.UpdatePlayer)
			r.With(writers).Delete("/{playerID}", h.Player.DeletePlayer)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.Match.ListMatches)
			r.Get("/{matchID}", h.Match.GetMatchByID)
			r.Get("/{matchID}/events", h.Match.ListEvents)
			r.Group(func(r chi.Router) {
				r.Use(writers)
				r.Post("/", h.Match.CreateMatch)
				r.Patch("/{matchID}", h.Match.RescheduleMatch)
				r.Put("/{matchID}/score", h.Match.SetScore)
				r.Delete("/{matchID}", h.Match.DeleteMatch)
				r.Post("/{matchID}/events", h.Match.AddEvent)
			})
		})

		r.With(writers).Delete("/events/{eventID}", h.Match.DeleteEvent)

		r.Route("/standings", func(r chi.Router) {
			r.Get("/", h.Standings.GetStandings)
			r.With(writers).Post("/recalculate", h.Standings.Recalculate)
			r.With(writers).Get("/audit", h.Standings.Audit)
		})

		r.Group(func(r chi.Router) {
			r.Use(writers)
			r.Get("/backup", h.Backup.Export)
			r.Post("/restore", h.Backup.Restore)
			r.With(superAdmin).Post("/backup/schedule/run", h.Backup.RunScheduledBackup)
		})
	})
}
