package envutil

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files without overriding
// variables already present in the process environment. Missing files are skipped.
func LoadDotEnv(log *logger.Logger, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		if log != nil {
			log.Debug("Loaded env file", "file", f)
		}
	}
	return nil
}

func GetEnv(key, defaultVal string, log *logger.Logger) string {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		if log != nil {
			log.Debug("Environment variable not found, using default", "env_var", key, "default", defaultVal)
		}
		return defaultVal
	}
	return strings.TrimSpace(val)
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if log != nil {
			log.Warn("Environment variable could not be parsed as int, using default", "env_var", key, "provided", raw, "default", defaultVal)
		}
		return defaultVal
	}
	return i
}

func GetEnvAsBool(key string, defaultVal bool, log *logger.Logger) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultVal
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	if log != nil {
		log.Warn("Environment variable could not be parsed as bool, using default", "env_var", key, "provided", raw, "default", defaultVal)
	}
	return defaultVal
}

// GetEnvAsSeconds reads an integer number of seconds.
func GetEnvAsSeconds(key string, defaultVal time.Duration, log *logger.Logger) time.Duration {
	secs := GetEnvAsInt(key, int(defaultVal/time.Second), log)
	if secs <= 0 {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

// GetEnvAsList splits a comma separated value, dropping empty items.
func GetEnvAsList(key string, defaultVal []string, log *logger.Logger) []string {
	raw := GetEnv(key, "", log)
	if raw == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
