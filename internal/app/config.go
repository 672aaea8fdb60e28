package app

import (
	"time"

	"github.com/vintry/contentops-backend/internal/platform/envutil"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

type Config struct {
	Port string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// RunServer/RunWorker split the process roles. Both default to true so a
	// plain `go run ./cmd` serves the API and drains jobs in one process;
	// deployments that split roles set one of them to false.
	RunServer bool
	RunWorker bool

	MetricsAddr string
	Environment string
	Version     string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:            envutil.Str("PORT", "8080"),
		JWTSecretKey:    envutil.Str("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:  time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,
		RefreshTokenTTL: time.Duration(envutil.Int("REFRESH_TOKEN_TTL", 86400)) * time.Second,
		RunServer:       envutil.Bool("RUN_SERVER", true),
		RunWorker:       envutil.Bool("RUN_WORKER", true),
		MetricsAddr:     envutil.Str("METRICS_ADDR", ""),
		Environment:     envutil.Str("APP_ENV", "development"),
		Version:         envutil.Str("APP_VERSION", ""),
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using insecure default")
	}
	return cfg
}
