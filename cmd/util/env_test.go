package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func TestGetEnvWithDefault(t *testing.T) {
	t.Setenv("TEST_STRING", "test-value")
	if got := GetEnvWithDefault("TEST_STRING", "default"); got != "test-value" {
		t.Errorf("Expected GetEnvWithDefault to return 'test-value', got '%s'", got)
	}

	if got := GetEnvWithDefault("GRIBBLE_MISSING_VAR", "default"); got != "default" {
		t.Errorf("Expected GetEnvWithDefault to return 'default', got '%s'", got)
	}

	t.Setenv("EMPTY_VAR", "")
	if got := GetEnvWithDefault("EMPTY_VAR", "default"); got != "default" {
		t.Errorf("Expected GetEnvWithDefault to return 'default' for empty var, got '%s'", got)
	}
}

func TestGetEnvIntWithDefault(t *testing.T) {
	t.Setenv("TEST_INT", "12345")
	if got := GetEnvIntWithDefault("TEST_INT", 0); got != 12345 {
		t.Errorf("Expected GetEnvIntWithDefault to return 12345, got %d", got)
	}

	t.Setenv("TEST_INVALID_INT", "not-a-number")
	if got := GetEnvIntWithDefault("TEST_INVALID_INT", 999); got != 999 {
		t.Errorf("Expected GetEnvIntWithDefault to return default 999, got %d", got)
	}
}

func TestSplitServer(t *testing.T) {
	tests := []struct {
		input string
		host  string
		port  int
	}{
		{"localhost", "localhost", 0},
		{"db,14330", "db", 14330},
		{"tcp:db, 1433", "db", 1433},
		{"db,abc", "db", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			host, port := SplitServer(tt.input)
			if host != tt.host || port != tt.port {
				t.Errorf("SplitServer(%q) = %q, %d; want %q, %d", tt.input, host, port, tt.host, tt.port)
			}
		})
	}
}

func newConnectionCommand(config *ConnectionConfig) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&config.Server, "server", "", "")
	cmd.Flags().IntVar(&config.Port, "port", 0, "")
	cmd.Flags().StringVar(&config.Database, "db", "", "")
	cmd.Flags().StringVar(&config.User, "user", "", "")
	cmd.Flags().StringVar(&config.Password, "password", "", "")
	return cmd
}

func TestPreRunEWithConnection_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvServer, "sql.internal,14330")
	t.Setenv(EnvDatabase, "Orders")
	t.Setenv(EnvUser, "app")
	t.Setenv(EnvPassword, "secret")

	var config ConnectionConfig
	var configFile, profile string
	cmd := newConnectionCommand(&config)
	if err := cmd.Flags().Set("user", "admin"); err != nil {
		t.Fatal(err)
	}

	if err := PreRunEWithConnection(&config, &configFile, &profile)(cmd, nil); err != nil {
		t.Fatalf("PreRunE failed: %v", err)
	}

	expected := ConnectionConfig{Server: "sql.internal", Port: 14330, Database: "Orders", User: "admin", Password: "secret"}
	if config != expected {
		t.Errorf("config = %+v; want %+v", config, expected)
	}
}

func TestPreRunEWithConnection_Profile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	for _, env := range []string{EnvServer, EnvDatabase, EnvUser, EnvPassword} {
		t.Setenv(env, "")
	}
	content := "default: staging\nprofiles:\n" +
		"  - name: dev\n    database: Dev\n    user: sa\n" +
		"  - name: staging\n    server: staging-db\n    port: 1444\n    database: Staging\n    user: deploy\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var config ConnectionConfig
	var configFile, profile string
	cmd := newConnectionCommand(&config)
	if err := PreRunEWithConnection(&config, &configFile, &profile)(cmd, nil); err != nil {
		t.Fatalf("PreRunE failed: %v", err)
	}
	expected := ConnectionConfig{Server: "staging-db", Port: 1444, Database: "Staging", User: "deploy"}
	if config != expected {
		t.Errorf("config = %+v; want %+v", config, expected)
	}

	config = ConnectionConfig{}
	profile = "dev"
	cmd = newConnectionCommand(&config)
	if err := PreRunEWithConnection(&config, &configFile, &profile)(cmd, nil); err != nil {
		t.Fatalf("PreRunE failed: %v", err)
	}
	if config.Database != "Dev" || config.Server != "localhost" {
		t.Errorf("config = %+v; want the dev profile on localhost", config)
	}

	profile = "prod"
	if err := PreRunEWithConnection(&config, &configFile, &profile)(newConnectionCommand(&ConnectionConfig{}), nil); err == nil {
		t.Error("PreRunE with an unknown profile succeeded")
	}
}

func TestPreRunEWithConnection_Required(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, env := range []string{EnvServer, EnvDatabase, EnvUser, EnvPassword} {
		t.Setenv(env, "")
	}

	var config ConnectionConfig
	var configFile, profile string
	cmd := newConnectionCommand(&config)
	if err := PreRunEWithConnection(&config, &configFile, &profile)(cmd, nil); err == nil {
		t.Error("PreRunE without a database succeeded")
	}
}
