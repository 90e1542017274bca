package test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/joho/godotenv"
)

// LoadEnv loads the repository-root .env so integration tests pick up the
// same credentials the CLI uses. Missing file is fine.
func LoadEnv(t *testing.T) {
	_, filename, _, _ := runtime.Caller(0)
	testDir := filepath.Dir(filename)

	_ = godotenv.Load(filepath.Join(testDir, "..", ".env"))
}

// RequireClassifierKey skips the test when no remote classifier credentials
// are configured in the environment.
func RequireClassifierKey(t *testing.T) {
	LoadEnv(t)
	if os.Getenv("CLASSIFIER_API_KEY") == "" {
		t.Skip("CLASSIFIER_API_KEY not set, skipping remote classifier test")
	}
}
