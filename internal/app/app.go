// Package app wires storage, the model client, the advice scheduler and the
// tracker from a loaded configuration.
package app

import (
	"fmt"

	"nutrivision/config"
	"nutrivision/internal/advice"
	"nutrivision/internal/db"
	"nutrivision/internal/gpt"
	"nutrivision/internal/tracker"
	"nutrivision/pkg/logger"
)

type App struct {
	Config  *config.Config
	DB      *db.SQLiteDB
	GPT     *gpt.Client
	Advice  *advice.Scheduler
	Tracker *tracker.Tracker
	Logger  *logger.Logger
}

// New opens the database and builds the pipeline. The AI key is not
// checked here; callers that reach the model validate it first.
func New(cfg *config.Config, l *logger.Logger) (*App, error) {
	database, err := db.NewSQLiteDB(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	l.Infow("Database opened", "path", cfg.Storage.Path)

	gptClient := gpt.NewClientWithBaseURL(cfg.GPT.APIKey, cfg.GPT.BaseURL).
		WithModel(cfg.GPT.Model).
		WithMaxTokens(cfg.GPT.MaxTokens).
		WithTimeout(cfg.GPT.Timeout).
		WithLogger(l)

	scheduler := advice.NewScheduler(gptClient, cfg.Advice.Debounce, l)
	tr := tracker.New(database, gptClient, gptClient, scheduler, l)

	return &App{
		Config:  cfg,
		DB:      database,
		GPT:     gptClient,
		Advice:  scheduler,
		Tracker: tr,
		Logger:  l,
	}, nil
}

// Close stops the scheduler and closes the database.
func (a *App) Close() error {
	a.Advice.Stop()
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
