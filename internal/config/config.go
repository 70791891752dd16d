package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port        string `mapstructure:"port"`
		MetricsPort string `mapstructure:"metrics_port"`
		TempDir     string `mapstructure:"temp_dir"`
	} `mapstructure:"server"`
	Database struct {
		Driver   string `mapstructure:"driver"` // "sqlite" or "postgres"
		Path     string `mapstructure:"path"`   // sqlite file
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Storage struct {
		Provider      string `mapstructure:"provider"` // "local" or "s3"
		LocalRoot     string `mapstructure:"local_root"`
		KeyID         string `mapstructure:"key_id"`
		AppKey        string `mapstructure:"app_key"`
		Endpoint      string `mapstructure:"endpoint"`
		Region        string `mapstructure:"region"`
		BucketUploads string `mapstructure:"bucket_uploads"`
		BucketAssets  string `mapstructure:"bucket_assets"`
	} `mapstructure:"storage"`
	Auth struct {
		JWTSecret     string `mapstructure:"jwt_secret"`
		TokenTTLHours int    `mapstructure:"token_ttl_hours"`
		AdminEmail    string `mapstructure:"admin_email"`
		AdminPassword string `mapstructure:"admin_password"`
	} `mapstructure:"auth"`
	Enhance struct {
		Endpoint    string  `mapstructure:"endpoint"`
		APIKey      string  `mapstructure:"api_key"`
		Model       string  `mapstructure:"model"`
		Temperature float64 `mapstructure:"temperature"`
	} `mapstructure:"enhance"`
	Analyze struct {
		Endpoint string `mapstructure:"endpoint"`
		APIKey   string `mapstructure:"api_key"`
		Language string `mapstructure:"language"`
	} `mapstructure:"analyze"`
	Pipeline struct {
		TickMs         int `mapstructure:"tick_ms"`
		StageStep      int `mapstructure:"stage_step"`
		AIStageStep    int `mapstructure:"ai_stage_step"`
		SegmentSeconds int `mapstructure:"segment_seconds"`
		SlideCount     int `mapstructure:"slide_count"`
	} `mapstructure:"pipeline"`
}

func Load() *Config {
	viper.SetEnvPrefix("PROFTWO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Register keys
	viper.BindEnv("server.port")
	viper.BindEnv("server.metrics_port")
	viper.BindEnv("server.temp_dir")

	viper.BindEnv("database.driver")
	viper.BindEnv("database.path")
	viper.BindEnv("database.host")
	viper.BindEnv("database.port")
	viper.BindEnv("database.user")
	viper.BindEnv("database.password")
	viper.BindEnv("database.name")

	viper.BindEnv("storage.provider")
	viper.BindEnv("storage.local_root")
	viper.BindEnv("storage.key_id")
	viper.BindEnv("storage.app_key")
	viper.BindEnv("storage.endpoint")
	viper.BindEnv("storage.region")
	viper.BindEnv("storage.bucket_uploads")
	viper.BindEnv("storage.bucket_assets")

	// Auth / Services
	viper.BindEnv("auth.jwt_secret")
	viper.BindEnv("auth.token_ttl_hours")
	viper.BindEnv("auth.admin_email")
	viper.BindEnv("auth.admin_password")
	viper.BindEnv("enhance.endpoint")
	viper.BindEnv("enhance.api_key")
	viper.BindEnv("enhance.model")
	viper.BindEnv("enhance.temperature")
	viper.BindEnv("analyze.endpoint")
	viper.BindEnv("analyze.api_key")
	viper.BindEnv("analyze.language")

	// Pipeline tuning
	viper.BindEnv("pipeline.tick_ms")
	viper.BindEnv("pipeline.stage_step")
	viper.BindEnv("pipeline.ai_stage_step")
	viper.BindEnv("pipeline.segment_seconds")
	viper.BindEnv("pipeline.slide_count")

	// Defaults
	viper.SetDefault("server.port", ":8081")
	viper.SetDefault("server.metrics_port", ":9091")
	viper.SetDefault("server.temp_dir", "/tmp/")

	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "./proftwo.db")
	viper.SetDefault("database.port", "5432")

	viper.SetDefault("storage.provider", "local")
	viper.SetDefault("storage.local_root", "./data")
	viper.SetDefault("storage.bucket_uploads", "proftwo-uploads")
	viper.SetDefault("storage.bucket_assets", "proftwo-assets")

	viper.SetDefault("auth.token_ttl_hours", 72)
	viper.SetDefault("auth.admin_email", "admin@proftwo.local")

	viper.SetDefault("enhance.endpoint", "https://api.x.ai/v1")
	viper.SetDefault("enhance.model", "grok-3-latest")
	viper.SetDefault("enhance.temperature", 0.3)
	viper.SetDefault("analyze.endpoint", "https://api.deepgram.com/v1")
	viper.SetDefault("analyze.language", "en")

	// Pipeline Defaults (match the original player cadence)
	viper.SetDefault("pipeline.tick_ms", 150)
	viper.SetDefault("pipeline.stage_step", 2)
	viper.SetDefault("pipeline.ai_stage_step", 1)
	viper.SetDefault("pipeline.segment_seconds", 6)
	viper.SetDefault("pipeline.slide_count", 8)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	// Secrets are injected here and nowhere else. Refuse to boot without one.
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("Critical: JWT secret is missing (PROFTWO_AUTH_JWT_SECRET)")
	}

	return &cfg
}
