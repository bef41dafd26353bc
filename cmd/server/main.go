package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"

	"github.com/arashv/shogun-dojo/internal/dojo"
	"github.com/arashv/shogun-dojo/internal/duel"
	"github.com/arashv/shogun-dojo/internal/profile"
	"github.com/arashv/shogun-dojo/internal/push"
	"github.com/arashv/shogun-dojo/internal/recorder"
	"github.com/arashv/shogun-dojo/internal/store"
	"github.com/arashv/shogun-dojo/internal/web"
)

type config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	DatabasePath string        `env:"DATABASE_PATH" envDefault:"./data/dojo.db"`
	DuelTimeout  time.Duration `env:"DUEL_TIMEOUT" envDefault:"60s"`
	DevMode      bool          `env:"DEV_MODE" envDefault:"false"`
	AdminToken   string        `env:"ADMIN_TOKEN"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`

	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `env:"VAPID_SUBJECT" envDefault:"mailto:admin@example.com"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logrus.WithError(err).Fatal("failed to parse configuration")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		logrus.WithError(err).Fatal("failed to create data directory")
	}

	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()

	profiles := profile.NewService(db)
	engine := duel.NewEngine(profiles, duel.Config{WaitWindow: cfg.DuelTimeout})
	dojoSvc := dojo.New(profiles, engine, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go recorder.New(db).Run(ctx, engine.Subscribe())

	var pushSvc *push.Service
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(db, push.Config{
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			VAPIDSubject:    cfg.VAPIDSubject,
		})
		notifier := push.NewNotifier(pushSvc, engine)
		go notifier.Run(ctx, engine.Subscribe())
	} else {
		logrus.Info("VAPID keys not configured, private push prompts disabled")
	}

	server := web.NewServer(dojoSvc, db, pushSvc, web.Config{
		DevMode:    cfg.DevMode,
		AdminToken: cfg.AdminToken,
	})
	server.StartSSE(engine.Subscribe())

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server,
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		logrus.Info("shutting down")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("http server shutdown error")
		}
	}()

	logrus.WithField("port", cfg.Port).Info("shogun dojo listening")
	if cfg.DevMode {
		logrus.Info("dev mode enabled, admin token not required")
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("http server error")
	}

	logrus.Info("server stopped")
}
