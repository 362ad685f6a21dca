package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/veriwork/veriwork/internal/api/handler"
	"github.com/veriwork/veriwork/internal/api/middleware"
	"github.com/veriwork/veriwork/internal/approval"
	"github.com/veriwork/veriwork/internal/auth"
	"github.com/veriwork/veriwork/internal/rbac"
	"github.com/veriwork/veriwork/internal/team"
	"github.com/veriwork/veriwork/internal/workentry"
	"github.com/veriwork/veriwork/internal/workview"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	AuthService *auth.Service
	Entries     workentry.Repository
	Engine      *approval.Engine
	Teams       team.Repository
	Views       workview.Repository
	Policy      *rbac.Policy
	DBPinger    handler.DBPinger
	Version     string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	policy := deps.Policy
	if policy == nil {
		policy = rbac.Default
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService))
		r.Use(middleware.RouteAuthz(policy))

		entryHandler := handler.NewWorkEntryHandler(deps.Entries, deps.Engine)
		r.Route("/work-entries", func(r chi.Router) {
			r.Post("/", entryHandler.Create)
			r.Get("/{id}", entryHandler.Get)
			r.Patch("/{id}", entryHandler.Update)
			r.Post("/{id}/submit", entryHandler.Submit)
			r.Post("/{id}/resubmit", entryHandler.Resubmit)
			r.Post("/{id}/approve", entryHandler.Approve)
			r.Post("/{id}/request-changes", entryHandler.RequestChanges)
			r.Post("/{id}/reject", entryHandler.Reject)
			r.Post("/{id}/annotations", entryHandler.Annotate)
		})

		teamHandler := handler.NewTeamHandler(deps.Teams)
		r.Route("/teams", func(r chi.Router) {
			r.Post("/", teamHandler.Create)
			r.Get("/", teamHandler.ListCompany)
			r.Post("/{id}/assignments", teamHandler.Assign)
			r.Delete("/{id}/assignments/{employeeId}", teamHandler.Unassign)
		})
		r.Get("/my/teams", teamHandler.ListMine)

		viewHandler := handler.NewWorkViewHandler(deps.Views)
		r.Get("/work-queue", viewHandler.ManagerQueue)
		r.Get("/company/work-entries", viewHandler.CompanyView)

		accountHandler := handler.NewAccountHandler(deps.AuthService)
		r.Post("/accounts", accountHandler.Create)
	})

	return r
}
