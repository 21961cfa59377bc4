package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles are tried in order; the first one that exists is loaded
var DefaultEnvFiles = []string{
	".env",       // Current directory
	"../../.env", // Project root when running from cmd/inspect
}

// Env holds settings read from the process environment
type Env struct {
	RedisAddr     string // host:port of a shared fitness cache, empty disables Redis
	RedisPassword string
	LogLevel      string
}

// Load reads the first existing env file, then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Env, error) {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}

	for _, file := range files {
		err := godotenv.Load(file)
		if err == nil {
			break
		}
		// It's okay if no .env file is found
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return &Env{
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}, nil
}
