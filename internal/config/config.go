// Package config loads application settings from an optional YAML file
// with environment-variable overrides for the common knobs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/dbhealth-backend/internal/logger"
	"github.com/yungbote/dbhealth-backend/internal/utils"
)

// Target pre-registers a SQL Server endpoint at startup.
type Target struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Config is the full application configuration.
type Config struct {
	// Mode selects logger output: "dev" or "prod".
	Mode string `yaml:"mode"`
	// SqlitePath is the result store database file.
	SqlitePath string `yaml:"sqlite_path"`
	// InstallScriptDir holds the First Responder Kit .sql installers,
	// empty to skip installation support.
	InstallScriptDir string `yaml:"install_script_dir"`
	// Targets are registered on startup if not already present.
	Targets []Target `yaml:"targets"`
}

// Load reads path if it exists, then applies env overrides. A missing
// file is not an error; a malformed one is.
func Load(path string, log *logger.Logger) (*Config, error) {
	cfg := &Config{
		Mode:       "dev",
		SqlitePath: "dbhealth.db",
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			log.Info("config file not found, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.Mode = utils.GetEnv("APP_MODE", cfg.Mode, log)
	cfg.SqlitePath = utils.GetEnv("SQLITE_PATH", cfg.SqlitePath, log)
	cfg.InstallScriptDir = utils.GetEnv("INSTALL_SCRIPT_DIR", cfg.InstallScriptDir, log)
	return cfg, nil
}
