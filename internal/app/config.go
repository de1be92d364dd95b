package app

import (
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/services"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/utils"
)

type Config struct {
	ListenAddress string
	Environment   string
	Auth          services.AuthConfig
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		ListenAddress: utils.GetEnv("LISTEN_ADDRESS", ":8080", log),
		Environment:   utils.GetEnv("APP_ENV", "development", log),
		Auth:          services.LoadAuthConfig(log),
	}
}
