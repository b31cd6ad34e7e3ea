package cli

import (
	"fmt"

	"github.com/soyeahso/evaluet/internal/config"
	"github.com/soyeahso/evaluet/internal/hooks"
	"github.com/soyeahso/evaluet/internal/llm"
	"github.com/soyeahso/evaluet/internal/report"
	"github.com/soyeahso/evaluet/internal/store"
	"github.com/soyeahso/evaluet/internal/telemetry"
)

// loadConfig loads and validates the config file.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return cfg, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	return cfg, nil
}

// openRepository opens the configured session store. The returned func
// releases it.
func openRepository(cfg config.Config) (store.Repository, func() error, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("using in-memory session store; sessions are lost on restart")
		return store.NewMemoryRepository(), func() error { return nil }, nil
	}

	dbPath := paths.Database(cfg.Store)
	db, err := store.Open(dbPath, log)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return store.NewSQLiteRepository(db), db.Close, nil
}

// newReportGenerator wires the report model into a generator.
func newReportGenerator(cfg config.Config, repo store.Repository, hm *hooks.Manager, metrics *telemetry.Recorder) (*report.Generator, error) {
	registry := llm.NewRegistryFromConfig(cfg.LLM, log)
	client, err := registry.Resolve(cfg.LLM.ReportModel)
	if err != nil {
		return nil, fmt.Errorf("resolving report model: %w", err)
	}
	roster, err := cfg.Roster()
	if err != nil {
		return nil, fmt.Errorf("interviewer catalog: %w", err)
	}
	return report.NewGenerator(repo, client, cfg.LLM, roster, hm, metrics, log), nil
}
