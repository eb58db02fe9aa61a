package config

import "time"

type Config struct {
	Game   GameConfig   `yaml:"game" mapstructure:"game"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	DB     DBConfig     `yaml:"db" mapstructure:"db"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

type GameConfig struct {
	Seed       int64   `yaml:"seed" mapstructure:"seed"`         // 0 = random
	Topology   string  `yaml:"topology" mapstructure:"topology"` // brick/square
	LakeLevel  float64 `yaml:"lake_level" mapstructure:"lake_level"`
	TrackLevel float64 `yaml:"track_level" mapstructure:"track_level"`
}

type ServerConfig struct {
	Addr             string        `yaml:"addr" mapstructure:"addr"`
	ReadTimeout      time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	CORSOrigins      []string      `yaml:"cors_origins" mapstructure:"cors_origins"`
	IntentsPerMinute int           `yaml:"intents_per_minute" mapstructure:"intents_per_minute"` // 0 disables limiting
}

type DBConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error
	File       string `yaml:"file" mapstructure:"file"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}
