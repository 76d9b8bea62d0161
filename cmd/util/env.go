package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// Environment variables shared with the sqlcmd tool.
const (
	EnvServer   = "SQLCMDSERVER"
	EnvDatabase = "SQLCMDDBNAME"
	EnvUser     = "SQLCMDUSER"
	EnvPassword = "SQLCMDPASSWORD"
)

// GetEnvWithDefault returns the value of an environment variable or a default value if not set
func GetEnvWithDefault(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntWithDefault returns the value of an environment variable as int or a default value if not set
func GetEnvIntWithDefault(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// SplitServer separates the sqlcmd "host,port" form. A server without a
// port returns 0.
func SplitServer(server string) (string, int) {
	host, port, found := strings.Cut(strings.TrimPrefix(server, "tcp:"), ",")
	if !found {
		return host, 0
	}
	p, err := strconv.Atoi(strings.TrimSpace(port))
	if err != nil {
		return host, 0
	}
	return host, p
}

// PreRunEWithConnection creates a PreRunE function that fills connection
// parameters whose flags were not set, first from the environment and then
// from the selected profile, and validates the required ones.
func PreRunEWithConnection(config *ConnectionConfig, configFile, profileName *string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		changed := cmd.Flags().Changed

		if server := GetEnvWithDefault(EnvServer, ""); server != "" && !changed("server") {
			host, port := SplitServer(server)
			config.Server = host
			if port != 0 && !changed("port") {
				config.Port = port
			}
		}
		if !changed("db") {
			config.Database = GetEnvWithDefault(EnvDatabase, config.Database)
		}
		if !changed("user") {
			config.User = GetEnvWithDefault(EnvUser, config.User)
		}
		if !changed("password") {
			config.Password = GetEnvWithDefault(EnvPassword, config.Password)
		}

		profiles, err := LoadProfiles(*configFile)
		if err != nil {
			return err
		}
		if profile := profiles.Select(*profileName); profile != nil {
			profile.Fill(config)
		} else if *profileName != "" {
			return fmt.Errorf("profile %q not found", *profileName)
		}

		if config.Server == "" {
			config.Server = "localhost"
		}
		if config.Database == "" {
			return fmt.Errorf("database name is required (use --db flag or %s environment variable)", EnvDatabase)
		}
		if config.User == "" {
			return fmt.Errorf("database user is required (use --user flag or %s environment variable)", EnvUser)
		}
		return nil
	}
}
