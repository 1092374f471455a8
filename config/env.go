package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads KEY=VALUE pairs from a .env file in the working directory
// into the process environment. Variables already set win. A missing file is
// not an error; deployments usually configure the environment directly.
func LoadEnv() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}
