// Package config is the single boundary where the environment is read. It
// merges config files, .env files, and QUERYBIND_* variables into one value
// that the rest of the tool receives explicitly.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

var AppFs = afero.NewOsFs()

// Config holds everything the pipeline and CLI need from the environment.
type Config struct {
	// ManifestPath is the querybind.yaml to process.
	ManifestPath string
	// DatabaseURL selects the live describe path; empty means offline.
	DatabaseURL string
	// BuildRoot anchors file-based query sources and offline cache files.
	// Left empty when QUERYBIND_BUILD_ROOT is unset; the components that
	// need it treat that as a configuration error.
	BuildRoot string
	// PersistQueries controls whether live describes write cache entries.
	PersistQueries bool
	// Debug enables pipeline debug logging.
	Debug bool
}

// Load reads configuration from config files, .env files, and the
// environment, in that order of increasing priority.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	viper.SetConfigName(".querybind")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "querybind"))

	viper.SetEnvPrefix("QUERYBIND")
	viper.AutomaticEnv()

	viper.SetDefault("manifest_path", "querybind.yaml")
	viper.SetDefault("persist_queries", true)
	viper.SetDefault("debug", false)

	// A missing config file is fine; the defaults and environment cover it.
	_ = viper.ReadInConfig()

	// .env first, then .env.local on top.
	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	cfg := &Config{
		ManifestPath:   viper.GetString("manifest_path"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		BuildRoot:      viper.GetString("build_root"),
		PersistQueries: viper.GetBool("persist_queries"),
		Debug:          viper.GetBool("debug"),
	}
	return cfg, nil
}
