package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/andympr/my-wedding-backend/internal/app"
	iauth "github.com/andympr/my-wedding-backend/internal/auth"
	"github.com/andympr/my-wedding-backend/internal/handlers"
	"github.com/andympr/my-wedding-backend/internal/middleware"
	"github.com/andympr/my-wedding-backend/internal/services"
)

// Dependencies bundles everything the router needs.
type Dependencies struct {
	DB     *gorm.DB
	JWT    *iauth.JWTService
	Config *app.Config
}

// NewRouter assembles the HTTP surface: global middleware, public endpoints,
// the token-gated guest group, and the role-gated admin group.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("router requires database handle")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("router requires jwt service")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("router requires configuration")
	}

	audit, err := services.NewAuditService(deps.DB)
	if err != nil {
		return nil, err
	}
	guests, err := services.NewGuestService(deps.DB, audit)
	if err != nil {
		return nil, err
	}
	tables, err := services.NewTableService(deps.DB)
	if err != nil {
		return nil, err
	}
	rsvp, err := services.NewRSVPService(deps.DB, audit)
	if err != nil {
		return nil, err
	}
	dashboard, err := services.NewDashboardService(deps.DB)
	if err != nil {
		return nil, err
	}
	users, err := services.NewUserService(deps.DB)
	if err != nil {
		return nil, err
	}

	authHandler, err := handlers.NewAuthHandler(users, deps.JWT)
	if err != nil {
		return nil, err
	}
	guestHandler, err := handlers.NewGuestHandler(guests, audit)
	if err != nil {
		return nil, err
	}
	companionHandler, err := handlers.NewCompanionHandler(guests)
	if err != nil {
		return nil, err
	}
	tableHandler, err := handlers.NewTableHandler(tables)
	if err != nil {
		return nil, err
	}
	rsvpHandler, err := handlers.NewRSVPHandler(rsvp)
	if err != nil {
		return nil, err
	}
	dashboardHandler, err := handlers.NewDashboardHandler(dashboard)
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
		middleware.CORS(deps.Config.Server.CORS.AllowedOrigins...),
		middleware.RateLimit(deps.Config.Server.RateLimit.MaxRequests, deps.Config.Server.RateLimit.Window),
	)
	engine.NoRoute(middleware.NotFoundHandler)

	engine.GET("/health", handlers.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registerAuthRoutes(engine, authHandler, deps.JWT)
	registerRSVPRoutes(engine, rsvpHandler, deps.DB)
	registerAdminRoutes(engine, deps.JWT, adminHandlers{
		guests:     guestHandler,
		companions: companionHandler,
		tables:     tableHandler,
		dashboard:  dashboardHandler,
	})

	return engine, nil
}
