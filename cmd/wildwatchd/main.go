// Command wildwatchd runs the Wild Watch alert API daemon.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/config"
	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/server"
	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/storage"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(os.Getenv("WILDWATCH_LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	cfg := config.LoadServer()

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer store.Close()

	if err := store.Init(context.Background()); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}

	sessions := server.NewSessionStore(cfg.SessionTTL)
	api := server.New(store, sessions, cfg, log)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr": cfg.Addr,
			"db":   cfg.DBPath,
		}).Info("wildwatchd listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
