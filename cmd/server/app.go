package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/coursehub/coursehub-api/internal/config"
	"github.com/coursehub/coursehub-api/internal/events"
	"github.com/coursehub/coursehub-api/internal/platform/filestore"
	"github.com/coursehub/coursehub-api/internal/platform/mailer"
	"github.com/coursehub/coursehub-api/internal/platform/postgres"
	"github.com/coursehub/coursehub-api/internal/service"
	"github.com/coursehub/coursehub-api/internal/service/auth"
	"github.com/coursehub/coursehub-api/internal/store"
	"github.com/coursehub/coursehub-api/internal/task"
	"github.com/spf13/afero"
)

// application holds the shared dependencies so they can be wired once and
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore      store.UserStore
	courseStore    store.CourseStore
	lectureStore   store.LectureStore
	resetCodeStore store.ResetCodeStore

	hasher        *auth.BcryptHasher
	tokenService  auth.TokenService
	authenticator *auth.Authenticator

	userService          service.UserService
	courseService        *service.CourseService
	passwordResetService *service.PasswordResetService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// appOption overrides a collaborator that otherwise comes from configuration.
type appOption func(*appDeps)

type appDeps struct {
	fs     afero.Fs
	mailer mailer.Mailer
}

// withFs stores course files on fs instead of the OS filesystem.
func withFs(fs afero.Fs) appOption {
	return func(d *appDeps) { d.fs = fs }
}

// withMailer delivers reset codes through m instead of the log.
func withMailer(m mailer.Mailer) appOption {
	return func(d *appDeps) { d.mailer = m }
}

// newApplication wires stores, services and background processing around db.
// The task runner is created here but only started by Run.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB, opts ...appOption) (*application, error) {
	deps := appDeps{
		fs:     afero.NewOsFs(),
		mailer: mailer.NewLogMailer(logger),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.courseStore = postgres.NewPostgresCourseStore(db, logger)
	app.lectureStore = postgres.NewPostgresLectureStore(db, logger)
	app.resetCodeStore = postgres.NewPostgresResetCodeStore(db, logger)

	var err error
	app.hasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	app.tokenService, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logger.Info("token service initialized",
		"issuer", cfg.Auth.Issuer,
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.authenticator, err = auth.NewAuthenticator(app.userStore, app.hasher, app.tokenService)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	files, err := filestore.New(deps.fs, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	app.taskRunner = task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Tasks.WorkerCount,
		QueueSize:   cfg.Tasks.QueueSize,
		TaskTimeout: task.DefaultTaskRunnerConfig().TaskTimeout,
	}, logger)

	taskHandler := task.NewTaskFactoryEventHandler(app.taskRunner, logger)
	taskHandler.Register(events.TypePasswordResetRequested, task.NewPasswordResetDeliveryFactory(deps.mailer))
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(taskHandler)

	app.userService, err = service.NewUserService(app.userStore, app.hasher, db, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.courseService, err = service.NewCourseService(
		app.courseStore,
		app.lectureStore,
		app.userStore,
		files,
		db,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create course service: %w", err)
	}

	app.passwordResetService, err = service.NewPasswordResetService(
		app.userStore,
		app.resetCodeStore,
		app.hasher,
		app.eventEmitter,
		db,
		logger,
		service.WithResetCodeTTL(cfg.Auth.ResetCodeLifetime()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create password reset service: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// Run starts background processing and serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	app.taskRunner.Start()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops the task runner, letting queued deliveries finish, and closes
// the database.
func (app *application) cleanup(ctx context.Context) {
	if app.taskRunner != nil {
		if err := app.taskRunner.Stop(ctx); err != nil {
			app.logger.Error("task runner did not stop cleanly", "error", err)
		}
	}

	if app.db != nil {
		closeDatabase(app.db, app.logger)
	}

	app.logger.Info("application shutdown completed")
}
