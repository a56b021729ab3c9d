package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, populated from the environment.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5174"`
	JWTSecret   string `env:"JWT_SECRET"`

	// DATABASE_URL wins when set; otherwise it is assembled from the
	// discrete PG* variables. Hosted providers hand out the URL form.
	DatabaseURL    string `env:"DATABASE_URL"`
	DatabaseConfig DatabaseConfig

	// Primary-store attempts on the read/create path give up after this
	// long and fall back to the local store.
	DBTimeout time.Duration `env:"DB_TIMEOUT" envDefault:"4s"`

	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"60s"`
	RedisEnabled bool          `env:"REDIS_ENABLED" envDefault:"false"`
	RedisURL     string        `env:"REDIS_URL" envDefault:"redis://127.0.0.1:6379"`

	FallbackStorePath string `env:"FALLBACK_STORE_PATH" envDefault:"data/fallback_resources.json"`

	CloudinaryConfig CloudinaryConfig
}

// DatabaseConfig contains the discrete Postgres connection parameters.
type DatabaseConfig struct {
	Host     string `env:"PGHOST" envDefault:"localhost"`
	Port     string `env:"PGPORT" envDefault:"5432"`
	User     string `env:"PGUSER" envDefault:"postgres"`
	Password string `env:"PGPASSWORD" envDefault:""`
	Name     string `env:"PGDATABASE" envDefault:"pwanystay"`
	SSLMode  string `env:"PGSSLMODE" envDefault:"disable"`
}

// CloudinaryConfig contains the Cloudinary upload provider credentials.
type CloudinaryConfig struct {
	CloudName    string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey       string `env:"CLOUDINARY_API_KEY"`
	APISecret    string `env:"CLOUDINARY_API_SECRET"`
	UploadFolder string `env:"CLOUDINARY_UPLOAD_FOLDER" envDefault:"pwanystay_properties"`
}

// LoadConfig loads variables from .env and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("❌ Failed to parse environment: %v", err)
	}

	if cfg.DatabaseURL == "" {
		db := cfg.DatabaseConfig
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			db.User, db.Password, db.Host, db.Port, db.Name, db.SSLMode)
	}

	if cfg.JWTSecret == "" {
		log.Println("⚠️ JWT_SECRET not set, using insecure development secret")
		cfg.JWTSecret = "change_me_in_production"
	}

	return cfg
}
