package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode              string        `mapstructure:"mode"`
	Port              int           `mapstructure:"port"`
	StaticPath        string        `mapstructure:"static_path"`
	UploadPath        string        `mapstructure:"upload_path"`
	Secret            string        `mapstructure:"secret"`
	ReadLimit         int64         `mapstructure:"read_limit"`
	GracePeriod       time.Duration `mapstructure:"grace_period"`
	EventRate         float64       `mapstructure:"event_rate"`
	EventBurst        int           `mapstructure:"event_burst"`
	MaxUploadBytes    int64         `mapstructure:"max_upload_bytes"`
	AdminPasswordFile string        `mapstructure:"admin_password_file"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("static_path", "./public")
	v.SetDefault("upload_path", "./public/room_pictures")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("grace_period", "30s")
	// 600 events per 5 seconds in the reference deployment.
	v.SetDefault("event_rate", 120.0)
	v.SetDefault("event_burst", 600)
	v.SetDefault("max_upload_bytes", 5*1024*1024)
	v.SetDefault("admin_password_file", "admin_password.txt")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// AdminPasswordHash resolves the bcrypt hash used for the
// verify-admin-password check: the ADMIN_PASSWORD env var wins,
// otherwise the hash file, otherwise empty (all attempts fail).
func (c *Config) AdminPasswordHash() string {
	if h := os.Getenv("ADMIN_PASSWORD"); h != "" {
		return h
	}
	b, err := os.ReadFile(c.AdminPasswordFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
