package redisdb

// Config holds configuration for the Redis connection.
type Config struct {
	// Enabled turns Redis on. Without it notifications are logged only and the
	// sync lock is process-local.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Address is host:port of the Redis server.
	Address string `mapstructure:"address" default:"localhost:6379"`
	// Password is the Redis password.
	Password string `mapstructure:"password" default:""`
	// DB is the Redis logical database.
	DB int `mapstructure:"db" default:"0"`
	// TimeoutSeconds bounds dialing and each command.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"5"`
}
