package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".evaluet"

// Paths holds resolved filesystem paths for evaluet data.
type Paths struct {
	Base   string // ~/.evaluet
	Config string // ~/.evaluet/config.yaml
	Env    string // ~/.evaluet/.env
	Data   string // ~/.evaluet/data
	Logs   string // ~/.evaluet/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If EVALUET_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("EVALUET_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Env:    filepath.Join(base, ".env"),
		Data:   filepath.Join(base, "data"),
		Logs:   filepath.Join(base, "logs"),
	}, nil
}

// Database returns the SQLite path, honoring an explicit store path.
func (p Paths) Database(cfg StoreConfig) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	return filepath.Join(p.Data, "evaluet.db")
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Data, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
