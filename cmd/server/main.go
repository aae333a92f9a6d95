package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"groundwork/internal/config"
	"groundwork/internal/data"
	"groundwork/internal/database"
	"groundwork/internal/history"
	"groundwork/internal/server"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load(log)
	log.SetLevel(cfg.LogLevel)

	provider, err := data.LoadDir(cfg.DataDir)
	if err != nil {
		log.Fatalf("loading game tables from %s: %v", cfg.DataDir, err)
	}

	var db *database.Store
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err = database.Connect(ctx, cfg.DatabaseURL, log)
		cancel()
		if err != nil {
			log.Fatalf("connecting to database: %v", err)
		}
		defer db.Close()
		log.Info("database persistence enabled")
	}

	recorder := history.NewRecorder(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := recorder.Ping(ctx)
		cancel()
		if err != nil {
			log.Fatalf("connecting to redis at %s: %v", cfg.RedisAddr, err)
		}
		defer recorder.Close()
		log.Info("action history stream enabled")
	}

	srv := server.New(log, server.Options{
		Data:         provider,
		DB:           db,
		Recorder:     recorder,
		JWTSecret:    cfg.JWTSecret,
		MaxTurns:     cfg.MaxTurns,
		TurnDuration: cfg.TurnDuration,
	})
	mux := http.NewServeMux()
	srv.Routes(mux)

	log.Infof("listening on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, mux); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
