// Package app wires all application dependencies and owns their
// lifecycle. Both dispatch registries are populated here, during
// single-threaded construction, before polling starts.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/botfoundry/menubot/bot/config"
	"github.com/botfoundry/menubot/bot/db"
	"github.com/botfoundry/menubot/bot/dispatch"
	logpkg "github.com/botfoundry/menubot/bot/logger"
	"github.com/botfoundry/menubot/bot/session"
	"github.com/botfoundry/menubot/bot/telegram"
	"github.com/botfoundry/menubot/bot/telegram/handler"
	"github.com/botfoundry/menubot/bot/worker"
	"github.com/mymmrac/telego"
	"golang.org/x/sync/errgroup"
)

// App wires all application dependencies.
type App struct {
	Config   *config.Config
	Logger   *logpkg.Logger
	Repo     *db.Repository
	Sessions *session.Manager
	Pool     *worker.Pool
	Telegram *telegram.Bot
	Router   *handler.Router
	Commands *handler.Commands
	MainMenu *handler.MainMenu
	Build    BuildInfo

	group *errgroup.Group
}

// BuildInfo provides build-time metadata.
type BuildInfo struct {
	RuntimeVer string
	BinVersion string
	CommitSHA  string
	BuildTime  string
	BuildArch  string
}

// New builds the application container.
func New(ctx context.Context, configPath string, build BuildInfo) (*App, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logpkg.New(logpkg.Options{
		Level:     conf.GetString("LogLevel"),
		Format:    conf.GetString("LogFormat"),
		AddSource: conf.GetBool("LogSource"),
		Dir:       conf.GetString("LogDir"),
	})
	if err != nil {
		return nil, err
	}

	gormLogger := logpkg.NewGormLogger(log.Slog(), logpkg.ParseGormLevel(conf.GetString("GormLogLevel")))
	databasePath := strings.TrimSpace(conf.GetString("Database"))
	if databasePath == "" {
		databasePath = "sessions.db"
	}

	repo, err := db.NewSQLiteRepository(databasePath, gormLogger)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	maxOpen := conf.GetInt("DBMaxOpenConns")
	maxIdle := conf.GetInt("DBMaxIdleConns")
	maxLifetimeSec := conf.GetInt("DBConnMaxLifetimeSec")
	if err := repo.ConfigurePool(maxOpen, maxIdle, time.Duration(maxLifetimeSec)*time.Second); err != nil {
		return nil, fmt.Errorf("configure db pool: %w", err)
	}

	sessionTimeout := time.Duration(conf.GetInt("SessionTimeoutHours")) * time.Hour
	sessions := session.New(repo, sessionTimeout, log)

	pool := worker.New(conf.GetInt("WorkerPoolSize"))

	tele, err := telegram.New(conf, log)
	if err != nil {
		return nil, fmt.Errorf("init telegram: %w", err)
	}

	commandRoutes := dispatch.New()
	callbackRoutes := dispatch.New()

	mainMenu, err := handler.NewMainMenu(tele, log, callbackRoutes)
	if err != nil {
		return nil, fmt.Errorf("build main menu: %w", err)
	}

	commands, err := handler.NewCommands(commandRoutes)
	if err != nil {
		return nil, fmt.Errorf("register commands: %w", err)
	}

	router := &handler.Router{
		Commands:  commandRoutes,
		Callbacks: callbackRoutes,
		Client:    tele,
		Sessions:  sessions,
		Logger:    log,
		Deps: dispatch.Deps{
			Client:   tele,
			MainMenu: mainMenu,
			Sessions: sessions,
			Logger:   log,
		},
	}

	return &App{
		Config:   conf,
		Logger:   log,
		Repo:     repo,
		Sessions: sessions,
		Pool:     pool,
		Telegram: tele,
		Router:   router,
		Commands: commands,
		MainMenu: mainMenu,
		Build:    build,
	}, nil
}

// Start launches the polling loop and the session sweeper. It returns
// once both are running; they stop when ctx is canceled.
func (a *App) Start(ctx context.Context) error {
	meCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	me, err := a.Telegram.GetMe(meCtx)
	if err != nil {
		return fmt.Errorf("getMe: %w", err)
	}
	a.Logger.Info("bot authorized",
		"username", me.Username,
		"bot_id", me.ID,
		"version", a.Build.BinVersion,
		"runtime", a.Build.RuntimeVer,
	)

	if err := a.Telegram.SetCommands(ctx, a.Commands.BotCommands()); err != nil {
		a.Logger.Warn("set commands failed", "error", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	a.group = group

	group.Go(func() error {
		return a.Telegram.Start(groupCtx, func(updateCtx context.Context, update telego.Update) {
			if err := a.Pool.Submit(func() {
				a.Router.HandleUpdate(updateCtx, update)
			}); err != nil {
				a.Logger.Warn("update dropped", "error", err)
			}
		})
	})

	sweepInterval := time.Duration(a.Config.GetInt("SessionSweepMinutes")) * time.Minute
	group.Go(func() error {
		return a.Sessions.Run(groupCtx, sweepInterval)
	})

	return nil
}

// Shutdown waits for background loops and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error

	if a.group != nil {
		if err := a.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			firstErr = fmt.Errorf("background loops: %w", err)
		}
	}

	if a.Pool != nil {
		if err := a.Pool.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown worker pool: %w", err)
		}
	}

	if a.Repo != nil {
		if err := a.Repo.Close(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("failed to close database", "error", err)
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("close database: %w", err)
			}
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close logger: %w", err)
		}
	}

	return firstErr
}
