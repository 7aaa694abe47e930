package config

import (
	"reflect"
	"strings"

	"tlf-sync/core/database"
	"tlf-sync/core/logger"
	"tlf-sync/core/reconcile"
	"tlf-sync/core/redisdb"
	"tlf-sync/core/server"
	"tlf-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// SourceConfig holds the read-only connection to the automated storage database.
type SourceConfig struct {
	database.Config `mapstructure:",squash"`
	// BatchLimit caps the outfeed rows read per cycle. Zero reads everything.
	BatchLimit int `mapstructure:"batch_limit" default:"0"`
}

// Config holds all configuration for the application.
type Config struct {
	Server server.Config `mapstructure:"server"`
	Log    logger.Config `mapstructure:"log"`
	// Database is the local ledger database.
	Database database.Config `mapstructure:"database"`
	// Source is the automated storage controller database.
	Source  SourceConfig     `mapstructure:"source"`
	Redis   redisdb.Config   `mapstructure:"redis"`
	Storage storage.Config   `mapstructure:"storage"`
	Sync    reconcile.Config `mapstructure:"sync"`
}

// LoadConfig loads configuration from environment variables and the .env file in path.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// A missing .env is fine in production.
	_ = godotenv.Overload(envPath)

	v := viper.New()
	bindValues(v, Config{}, "")

	// SOURCE_HOST -> source.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues registers every leaf key with its `default` tag so AutomaticEnv can resolve it.
// Embedded structs tagged ",squash" are flattened into the parent prefix.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			nested := reflect.New(field.Type).Elem().Interface()
			if strings.HasSuffix(tag, ",squash") {
				bindValues(v, nested, prefix)
				continue
			}
			bindValues(v, nested, join(prefix, tag))
			continue
		}

		v.SetDefault(join(prefix, tag), field.Tag.Get("default"))
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
