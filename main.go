package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/jtammen/carbon-tracker/app"
	"github.com/jtammen/carbon-tracker/config"
	"github.com/jtammen/carbon-tracker/database"
	"github.com/jtammen/carbon-tracker/log"
	"github.com/jtammen/carbon-tracker/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	handler := routes.Wire(app.New(db, cfg))

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
