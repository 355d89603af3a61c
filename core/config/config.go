package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"stash-pricer/core/database"
	"stash-pricer/core/items"
	"stash-pricer/core/logger"
	"stash-pricer/core/server"
	"stash-pricer/core/stats"
	"stash-pricer/core/storage"
	"stash-pricer/core/store"
	"stash-pricer/feature/builds"
	"stash-pricer/feature/ingest"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full process configuration, one section per component.
type Config struct {
	Server   server.Config   `mapstructure:"server"`
	Storage  storage.Config  `mapstructure:"storage"`
	Log      logger.Config   `mapstructure:"log"`
	Database database.Config `mapstructure:"database"`
	// Stats points at the affix dataset used by the normalizer.
	Stats stats.Config `mapstructure:"stats"`
	// Items points at the base type table used by the classifier.
	Items items.Config `mapstructure:"items"`
	// Index selects the search backend and tunes the set-index.
	Index  store.Config  `mapstructure:"index"`
	Ingest ingest.Config `mapstructure:"ingest"`
	Builds builds.Config `mapstructure:"builds"`
}

// LoadConfig reads dir/.env when present, then the environment.
// SERVER_PORT maps to server.port; values in .env win over the process
// environment.
func LoadConfig(dir string) (*Config, error) {
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	registerDefaults(v, reflect.TypeOf(Config{}), "")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// registerDefaults walks mapstructure tags and records each leaf's default
// tag. Every leaf is registered, even with an empty default, because
// AutomaticEnv only resolves keys viper already knows.
func registerDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		// time.Duration and slices are leaves.
		if field.Type.Kind() == reflect.Struct {
			registerDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
