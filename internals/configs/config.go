// internals/configs/config.go
package configs

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	JWTSecret    string
	SettingsPath string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system ENV")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	SettingsPath = GetEnv("SETTINGS_PATH", "assets/settings.json")

	if JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is not set")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}
