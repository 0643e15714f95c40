package app

import (
	"strings"
	"time"

	"github.com/viorelmirea/provocations-backend/internal/platform/logger"
	"github.com/viorelmirea/provocations-backend/internal/utils"
)

type Config struct {
	Port       string
	ContentDir string

	AllowOrigins []string

	RequestLimit    int
	RequestWindow   time.Duration
	Recycle         bool
	PerConcernLimit int
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	contentDir := utils.GetEnv("CONTENT_DIR", "./content", log)
	origins := utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000", log)

	requestLimit := utils.GetEnvAsInt("REGENERATE_REQUEST_LIMIT", 100, log)
	requestWindow := utils.GetEnvAsDuration("REGENERATE_WINDOW", 24*time.Hour, log)
	recycle := utils.GetEnvAsBool("REGENERATE_RECYCLE", false, log)
	perConcernLimit := utils.GetEnvAsInt("REGENERATE_PER_CONCERN_LIMIT", 40, log)

	var allowOrigins []string
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowOrigins = append(allowOrigins, origin)
		}
	}

	return Config{
		Port:            port,
		ContentDir:      contentDir,
		AllowOrigins:    allowOrigins,
		RequestLimit:    requestLimit,
		RequestWindow:   requestWindow,
		Recycle:         recycle,
		PerConcernLimit: perConcernLimit,
	}
}
