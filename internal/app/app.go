package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/experiencepoints/api/internal/catalog"
	"github.com/experiencepoints/api/internal/config"
	"github.com/experiencepoints/api/internal/db"
	"github.com/experiencepoints/api/internal/middleware"
	"github.com/experiencepoints/api/internal/repository"
	"github.com/experiencepoints/api/internal/service"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Catalog        *catalog.Catalog
	AuthService    *service.AuthService
	GoalService    *service.GoalService
	ProfileService *service.ProfileService
	ShareService   *service.ShareService
	FriendService  *service.FriendService
	AuthLimiter    *middleware.RateLimiter

	done chan struct{}
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	a, err := Build(cfg, database)
	if err != nil {
		_ = db.Close(database)
		return nil, err
	}
	return a, nil
}

// Build wires repositories and services over an already migrated database.
func Build(cfg *config.Config, database *sqlx.DB) (*App, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	historyRepository := repository.NewHistoryRepository(database)
	friendshipRepository := repository.NewFriendshipRepository(database)
	shareRepository := repository.NewShareRepository(database)

	// Services
	goalService := service.NewGoalService(database, goalRepository, historyRepository, cfg.GoalDefaultDeadline)
	authService := service.NewAuthService(database, userRepository, goalService, cat, cfg.JWTSecret, cfg.JWTExpiry)
	friendService := service.NewFriendService(database, userRepository, friendshipRepository)
	profileService := service.NewProfileService(userRepository, goalService, friendService)
	shareService := service.NewShareService(shareRepository, userRepository, goalService)

	a := &App{
		Cfg:            cfg,
		DB:             database,
		Catalog:        cat,
		AuthService:    authService,
		GoalService:    goalService,
		ProfileService: profileService,
		ShareService:   shareService,
		FriendService:  friendService,
		AuthLimiter:    middleware.NewRateLimiter(cfg.RateLimitAuthPerMinute),
		done:           make(chan struct{}),
	}
	go a.AuthLimiter.Cleanup(a.done)

	return a, nil
}

func (a *App) Close() error {
	close(a.done)
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
