package app

import (
	"database/sql"

	"github.com/jtammen/carbon-tracker/config"
	"github.com/jtammen/carbon-tracker/survey"
)

type App struct {
	*sql.DB
	*survey.Store
	config.Config
}

func New(db *sql.DB, cfg config.Config) App {
	return App{
		DB:     db,
		Store:  survey.NewStore(db),
		Config: cfg,
	}
}
