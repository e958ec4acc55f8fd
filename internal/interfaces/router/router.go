package router

import (
	"context"
	"net/http"
	"time"

	authsvc "setu-backend/internal/application/auth"
	"setu-backend/internal/application/emails"
	fundsvc "setu-backend/internal/application/funds"
	healthsvc "setu-backend/internal/application/health"
	projectsvc "setu-backend/internal/application/projects"
	"setu-backend/internal/application/scoring"
	submissionsvc "setu-backend/internal/application/submissions"
	trackersvc "setu-backend/internal/application/tracker"
	uploadsvc "setu-backend/internal/application/uploads"
	usersvc "setu-backend/internal/application/users"
	villagesvc "setu-backend/internal/application/villages"
	votesvc "setu-backend/internal/application/votes"
	"setu-backend/internal/config"
	"setu-backend/internal/constants"
	"setu-backend/internal/infrastructure/database"
	authhandler "setu-backend/internal/interfaces/handlers/auth"
	fundhandler "setu-backend/internal/interfaces/handlers/funds"
	healthhandler "setu-backend/internal/interfaces/handlers/health"
	projecthandler "setu-backend/internal/interfaces/handlers/projects"
	scorehandler "setu-backend/internal/interfaces/handlers/scores"
	submissionhandler "setu-backend/internal/interfaces/handlers/submissions"
	trackerhandler "setu-backend/internal/interfaces/handlers/tracker"
	uploadhandler "setu-backend/internal/interfaces/handlers/uploads"
	userhandler "setu-backend/internal/interfaces/handlers/users"
	villagehandler "setu-backend/internal/interfaces/handlers/villages"
	votehandler "setu-backend/internal/interfaces/handlers/votes"
	"setu-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) PingContext(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreateApp builds the Fiber app, opens the database and Redis, and registers every route.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
		BodyLimit:               uploadsvc.MaxUploadSize + 1<<20,
	})

	app.Use(recover.New())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
		PublicPrefix:  "/api/v1/public/",
	}))

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
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	db, err := database.OpenDriver(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, nil, err
	}

	hh := &healthhandler.Handlers{
		Rdb: rdb,
		Collector: &healthsvc.Collector{
			Rdb:        rdb,
			DB:         &gormDBPinger{db: db},
			StorageURL: cfg.StorageURL,
			HTTPClient: &http.Client{Timeout: 3 * time.Second},
		},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	engine := &scoring.Engine{
		DB:       db,
		Rdb:      rdb,
		Config:   scoring.ConfigFrom(cfg.Score),
		CacheTTL: cfg.Score.CacheTTL,
	}

	var mailer emails.Sender
	if cfg.BrevoAPIKey != "" {
		mailer = &emails.BrevoClient{APIKey: cfg.BrevoAPIKey, MailFrom: cfg.MailFrom}
	}

	// Auth
	ah := &authhandler.Handlers{
		UserFinder: &authsvc.GormUserFinder{DB: db},
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	// Public tracker
	th := &trackerhandler.Handlers{Service: &trackersvc.Service{DB: db}}
	app.Get("/api/v1/public/track/:token", middleware.PublicRateLimiter(cfg.PublicRateLimit, rdb), th.Track)

	// Users; create-user is public registration
	uh := &userhandler.Handlers{Service: &usersvc.Service{DB: db, Rdb: rdb, Mailer: mailer}, Config: sessionCfg}
	app.Post("/api/v1/users/create-user", uh.Register)

	api := app.Group("/api/v1", middleware.RequireAuth())
	view := middleware.AuthorizePermission(constants.ViewData)

	api.Get("/users/view-user", uh.ViewUser)
	api.Get("/users", middleware.AuthorizePermission(constants.ManageUsers), uh.List)
	api.Post("/users", middleware.AuthorizePermission(constants.ManageUsers), uh.Create)
	api.Patch("/users/update-role", middleware.AuthorizePermission(constants.ManageUsers), uh.UpdateRole)

	// Villages
	vh := &villagehandler.Handlers{Service: &villagesvc.Service{DB: db, Scores: engine}}
	manageVillages := middleware.AuthorizePermission(constants.ManageVillages)
	api.Post("/villages", manageVillages, vh.Create)
	api.Get("/villages", view, vh.List)
	api.Get("/villages/:id", view, vh.Get)
	api.Put("/villages/:id/metrics", manageVillages, vh.UpdateMetrics)
	api.Delete("/villages/:id", manageVillages, vh.Deactivate)

	// Scores
	sh := &scorehandler.Handlers{Engine: engine}
	api.Get("/villages/:id/score", view, sh.VillageScore)
	api.Get("/scores/leaderboard", view, sh.Leaderboard)
	api.Post("/scores/recompute", middleware.AuthorizePermission(constants.RecomputeScores), sh.RecomputeAll)

	// Projects
	ph := &projecthandler.Handlers{Service: &projectsvc.Service{DB: db, Scores: engine}}
	manageProjects := middleware.AuthorizePermission(constants.ManageProjects)
	api.Post("/projects", manageProjects, ph.Create)
	api.Get("/projects/:id", view, ph.Get)
	api.Get("/villages/:id/projects", view, ph.ListByVillage)
	api.Patch("/projects/:id/status", manageProjects, ph.UpdateStatus)
	api.Post("/projects/:id/checkpoints", manageProjects, ph.AddCheckpoint)
	api.Get("/projects/:id/completion", view, ph.Completion)

	// Submissions
	subh := &submissionhandler.Handlers{Service: &submissionsvc.Service{DB: db, Scores: engine, Mailer: mailer}}
	api.Post("/checkpoints/:id/submissions", middleware.AuthorizePermission(constants.SubmitEvidence), subh.Submit)
	api.Get("/checkpoints/:id/submissions", view, subh.ListByCheckpoint)
	api.Get("/submissions/:id", view, subh.Get)
	api.Post("/submissions/:id/review", middleware.AuthorizePermission(constants.ReviewSubmissions), subh.Review)

	// Funds
	fh := &fundhandler.Handlers{Service: &fundsvc.Service{DB: db, Scores: engine}}
	manageFunds := middleware.AuthorizePermission(constants.ManageFunds)
	api.Post("/projects/:id/funds/allocate", manageFunds, fh.Allocate)
	api.Post("/projects/:id/funds/release", manageFunds, fh.Release)
	api.Get("/projects/:id/funds", view, fh.Totals)
	api.Get("/projects/:id/funds/transactions", view, fh.Transactions)

	// Priority votes
	voh := &votehandler.Handlers{Service: &votesvc.Service{DB: db, Scores: engine}}
	castVote := middleware.AuthorizePermission(constants.CastVote)
	api.Post("/villages/:id/votes", castVote, voh.Create)
	api.Get("/villages/:id/votes", view, voh.ListByVillage)
	api.Post("/votes/:id/upvote", castVote, voh.Upvote)
	api.Post("/votes/:id/convert", middleware.AuthorizePermission(constants.ConvertVotes), voh.Convert)

	// Evidence uploads
	storage := &uploadsvc.HTTPClient{BaseURL: cfg.StorageURL, SecretKey: cfg.StorageSecretKey}
	uph := &uploadhandler.Handlers{Service: &uploadsvc.Service{Client: storage, BaseURL: cfg.StorageURL, Bucket: cfg.MediaBucket}}
	submitEvidence := middleware.AuthorizePermission(constants.SubmitEvidence)
	api.Post("/uploads/evidence-url", submitEvidence, uph.EvidenceURL)
	api.Post("/uploads/evidence", submitEvidence, uph.Evidence)

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
