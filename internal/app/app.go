package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	nats "github.com/nats-io/nats.go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/jobin-logidots/auth-service/config"
	httpadapter "github.com/jobin-logidots/auth-service/internal/adapters/http"
	apiv1 "github.com/jobin-logidots/auth-service/internal/adapters/http/api/v1"
	handlers "github.com/jobin-logidots/auth-service/internal/adapters/http/api/v1/handlers"
	authmw "github.com/jobin-logidots/auth-service/internal/adapters/http/middleware"
	"github.com/jobin-logidots/auth-service/internal/adapters/mailer"
	natsadapter "github.com/jobin-logidots/auth-service/internal/adapters/nats"
	repo "github.com/jobin-logidots/auth-service/internal/adapters/postgres"
	"github.com/jobin-logidots/auth-service/internal/domain"
	"github.com/jobin-logidots/auth-service/internal/usecase"
	pkglog "github.com/jobin-logidots/auth-service/pkg/log"
)

type App struct {
	cfg      *config.Config
	logger   pkglog.Logger
	db       *gorm.DB
	natsConn *nats.Conn
	echo     *echo.Echo
}

func New(ctx context.Context) (*App, error) {
	cfg := config.MustLoad()
	log := pkglog.New(cfg.AppEnv)

	db, err := gorm.Open(postgres.Open(buildDSN(cfg)), &gorm.Config{
		Logger:         loggerForGorm(cfg),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Session{}, &domain.ForgotPassword{}); err != nil {
		return nil, err
	}

	var nc *nats.Conn
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Warn().Err(err).Msg("nats connect failed, mail falls back to http")
		}
	}

	users := repo.NewUserRepository(db)
	sessions := repo.NewSessionRepository(db)
	forgot := repo.NewForgotPasswordRepository(db)

	codec, err := usecase.NewJWTCodec(cfg)
	if err != nil {
		return nil, err
	}
	hasher := usecase.NewPasswordHasher(cfg.BcryptCost)

	var mail usecase.Mailer
	if nc != nil {
		mail, err = natsadapter.NewMailer(nc, cfg.NATSSignUpSubject, cfg.NATSForgotSubject)
		if err != nil {
			return nil, err
		}
	} else if cfg.MailerURL != "" {
		mail = mailer.NewClient(cfg.MailerURL, cfg.FrontendURL, cfg.MailerTimeout)
	}

	service := usecase.NewAuthService(cfg, log, users, sessions, forgot, hasher, codec, mail)
	handler := handlers.NewAuthHandler(service)
	authMW := authmw.NewAuthMiddleware(codec)
	router := httpadapter.NewRouter(cfg, apiv1.NewRouter(handler, authMW.Handler))

	if nc != nil {
		verifyHandler := natsadapter.NewVerifyHandler(codec)
		if err := verifyHandler.Subscribe(nc, cfg.NATSVerifySubject, cfg.AppName); err != nil {
			log.Warn().Err(err).Msg("verify subscription failed")
		}
	}

	e := echo.New()
	router.Setup(e)

	return &App{cfg: cfg, logger: log, db: db, natsConn: nc, echo: e}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.echo.Shutdown(shutdownCtx)
	}()
	go func() {
		errCh <- a.echo.Start(fmt.Sprintf("%s:%s", a.cfg.HTTPHost, a.cfg.HTTPPort))
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) Close() {
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func loggerForGorm(cfg *config.Config) logger.Interface {
	level := logger.Silent
	switch cfg.AppEnv {
	case "local":
		level = logger.Info
	default:
		level = logger.Warn
	}
	return logger.Default.LogMode(level)
}
