package config

import (
	"os"
	"testing"
)

// TestAcceptanceCriteria verifies all milestone acceptance criteria.
func TestAcceptanceCriteria(t *testing.T) {
	t.Run("AC1: Store URL configurable via DOPPEL_STORE_URL", func(t *testing.T) {
		os.Setenv("DOPPEL_STORE_URL", "sqlite://acceptance.db")
		defer os.Unsetenv("DOPPEL_STORE_URL")

		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("AC1 FAIL: LoadConfig error: %v", err)
		}
		if cfg.StoreURL != "sqlite://acceptance.db" {
			t.Fatalf("AC1 FAIL: Expected env store url, got %s", cfg.StoreURL)
		}
		t.Log("AC1 PASS: Store URL configurable via environment")
	})

	t.Run("AC2: Config file with database password rejected with clear error", func(t *testing.T) {
		tmpfile, err := os.CreateTemp("", "config-*.yaml")
		if err != nil {
			t.Fatal(err)
		}
		defer os.Remove(tmpfile.Name())

		configContent := `store:
  url: postgres://doppel:sekret@db:5432/doppel
`
		if _, err := tmpfile.Write([]byte(configContent)); err != nil {
			t.Fatal(err)
		}
		tmpfile.Close()

		_, err = LoadConfig(tmpfile.Name())
		if err == nil {
			t.Fatal("AC2 FAIL: Expected error for password in config file")
		}
		if err.Error() != "database passwords not allowed in config files (use DOPPEL_STORE_URL environment variable)" {
			t.Fatalf("AC2 FAIL: Wrong error message: %v", err)
		}
		t.Log("AC2 PASS: Config file with database password rejected with clear error")
	})

	t.Run("AC3: Environment overrides config file", func(t *testing.T) {
		os.Setenv("DOPPEL_ENGINE_MAX_DEPTH", "5")
		defer os.Unsetenv("DOPPEL_ENGINE_MAX_DEPTH")

		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("AC3 FAIL: LoadConfig error: %v", err)
		}
		if cfg.Engine.MaxDepth != 5 {
			t.Fatalf("AC3 FAIL: Expected max_depth 5, got %d", cfg.Engine.MaxDepth)
		}

		tmpfile, err := os.CreateTemp("", "config-*.yaml")
		if err != nil {
			t.Fatal(err)
		}
		defer os.Remove(tmpfile.Name())

		configContent := `engine:
  max_depth: 9
`
		if _, err := tmpfile.Write([]byte(configContent)); err != nil {
			t.Fatal(err)
		}
		tmpfile.Close()

		cfg, err = LoadConfig(tmpfile.Name())
		if err != nil {
			t.Fatalf("AC3 FAIL: LoadConfig error: %v", err)
		}
		// Environment variable (5) should override config file (9)
		if cfg.Engine.MaxDepth != 5 {
			t.Fatalf("AC3 FAIL: Environment should override config file. Expected 5, got %d", cfg.Engine.MaxDepth)
		}
		t.Log("AC3 PASS: Environment variables override config file (CLI flags > env > config in viper)")
	})
}
