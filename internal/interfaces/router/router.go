package router

import (
	authsvc "keystone-backend/internal/auth"

	"keystone-backend/internal/application/attribution"
	buildingsvc "keystone-backend/internal/application/buildings"
	"keystone-backend/internal/application/continuity"
	issuesvc "keystone-backend/internal/application/issues"
	"keystone-backend/internal/application/operatorperiods"
	orgsvc "keystone-backend/internal/application/orgs"
	"keystone-backend/internal/application/transitionevents"
	"keystone-backend/internal/application/transitions"
	usersvc "keystone-backend/internal/application/user"
	wosvc "keystone-backend/internal/application/workorders"
	"keystone-backend/internal/config"
	"keystone-backend/internal/constants"
	"keystone-backend/internal/infrastructure/database"
	authhandler "keystone-backend/internal/interfaces/handlers/auth"
	buildinghandler "keystone-backend/internal/interfaces/handlers/buildings"
	healthhandler "keystone-backend/internal/interfaces/handlers/health"
	issuehandler "keystone-backend/internal/interfaces/handlers/issues"
	operatorhandler "keystone-backend/internal/interfaces/handlers/operators"
	orghandler "keystone-backend/internal/interfaces/handlers/orgs"
	userhandler "keystone-backend/internal/interfaces/handlers/user"
	wohandler "keystone-backend/internal/interfaces/handlers/workorders"
	"keystone-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route registration.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Session (Redis)
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	// Health request marker (after session)
	app.Use(middleware.HealthMarker(rdb))

	// Tracing + route logger
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	// Database
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	// Health endpoints (no auth)
	healthHandlers := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             &gormDBPinger{db: db},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/reset", healthHandlers.Reset)

	// Auth (no auth middleware): POST login, GET me, DELETE logout
	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	authHandlers := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// --- Protected modules (auth required) ---
	if db != nil {
		periodStore := &operatorperiods.Service{DB: db}
		transitionService := &transitions.Service{DB: db}
		continuityService := &continuity.Service{DB: db, Periods: periodStore}
		eventService := &transitionevents.Service{DB: db}
		binder := attribution.Binder{}

		// Users
		userService := &usersvc.Service{DB: db}
		userHandlers := &userhandler.Handlers{Service: userService}
		userGroup := app.Group("/api/v1/users", middleware.RequireAuth())
		userGroup.Post("/", middleware.AuthorizePermission(constants.InviteUser), userHandlers.Create)
		userGroup.Patch("/:id/role", middleware.AuthorizePermission(constants.AssignRole), userHandlers.UpdateRole)
		userGroup.Get("/org", userHandlers.ListOrgUsers)

		// Operator directory
		orgService := &orgsvc.Service{DB: db}
		orgHandlers := &orghandler.Handlers{Service: orgService}
		orgGroup := app.Group("/api/v1/orgs", middleware.RequireAuth())
		orgGroup.Post("/management-companies", middleware.AuthorizePermission(constants.ManageOrgs), orgHandlers.CreateManagementCompany)
		orgGroup.Post("/hoa-organizations", middleware.AuthorizePermission(constants.ManageOrgs), orgHandlers.CreateHoaOrganization)
		orgGroup.Get("/management-companies", orgHandlers.ListManagementCompanies)
		orgGroup.Get("/hoa-organizations", orgHandlers.ListHoaOrganizations)

		// Buildings, portfolio, timeline, audit events
		buildingService := &buildingsvc.Service{DB: db, Transitions: transitionService}
		buildingHandlers := &buildinghandler.Handlers{
			Service:    buildingService,
			Continuity: continuityService,
			EventLog:   eventService,
		}
		buildingGroup := app.Group("/api/v1/buildings", middleware.RequireAuth())
		buildingGroup.Post("/onboard", middleware.AuthorizePermission(constants.OnboardBuilding), buildingHandlers.Onboard)
		buildingGroup.Get("/portfolio", middleware.AuthorizePermission(constants.ViewPortfolio), buildingHandlers.Portfolio)
		buildingGroup.Get("/:id/timeline", middleware.AuthorizePermission(constants.ViewTimeline), buildingHandlers.Timeline)
		buildingGroup.Get("/:id/events", middleware.AuthorizePermission(constants.ViewTimeline), buildingHandlers.Events)
		buildingGroup.Get("/:id/units", buildingHandlers.Units)
		buildingGroup.Post("/:id/units", middleware.AuthorizePermission(constants.OnboardBuilding), buildingHandlers.AddUnit)
		buildingGroup.Get("/:id", buildingHandlers.Get)

		// Operator transitions
		operatorHandlers := &operatorhandler.Handlers{Service: transitionService}
		operatorGroup := app.Group("/api/v1/operators", middleware.RequireAuth())
		operatorGroup.Post("/transition", middleware.AuthorizePermission(constants.TransitionOperator), operatorHandlers.Transition)

		// Issues
		issueService := &issuesvc.Service{DB: db, Binder: binder}
		issueHandlers := &issuehandler.Handlers{Service: issueService}
		issueGroup := app.Group("/api/v1/issues", middleware.RequireAuth())
		issueGroup.Post("/", middleware.AuthorizePermission(constants.CreateIssue), issueHandlers.Create)
		issueGroup.Get("/building/:building_id", issueHandlers.ListByBuilding)
		issueGroup.Patch("/:id/status", middleware.AuthorizePermission(constants.UpdateIssue), issueHandlers.UpdateStatus)
		issueGroup.Get("/:id", issueHandlers.Get)

		// Work orders
		workOrderService := &wosvc.Service{DB: db, Binder: binder}
		workOrderHandlers := &wohandler.Handlers{Service: workOrderService}
		woGroup := app.Group("/api/v1/work-orders", middleware.RequireAuth())
		woGroup.Post("/", middleware.AuthorizePermission(constants.CreateWorkOrder), workOrderHandlers.Create)
		woGroup.Get("/building/:building_id", workOrderHandlers.ListByBuilding)
		woGroup.Patch("/:id/status", middleware.AuthorizePermission(constants.UpdateWorkOrder), workOrderHandlers.UpdateStatus)
		woGroup.Get("/:id", workOrderHandlers.Get)
	}

	return app, db, rdb, nil
}
