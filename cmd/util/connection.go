package util

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/spf13/cobra"

	"github.com/alexmaris/gribble/internal/logger"
)

// DefaultPort is the SQL Server listener port used when none is configured.
const DefaultPort = 1433

// ConnectionConfig holds database connection parameters
type ConnectionConfig struct {
	Server          string
	Port            int
	Database        string
	User            string
	Password        string
	Encrypt         string
	ApplicationName string
}

// Connect establishes a database connection using the provided configuration
func Connect(ctx context.Context, config *ConnectionConfig) (*sql.DB, error) {
	log := logger.Get()

	log.Debug("Attempting database connection",
		"server", config.Server,
		"port", config.Port,
		"database", config.Database,
		"user", config.User,
		"encrypt", config.Encrypt,
		"application_name", config.ApplicationName,
	)

	conn, err := sql.Open("sqlserver", BuildDSN(config))
	if err != nil {
		log.Debug("Database connection failed", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		log.Debug("Database ping failed", "error", err)
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug("Database connection established successfully")
	return conn, nil
}

// BuildDSN constructs a sqlserver:// URL from connection parameters
func BuildDSN(config *ConnectionConfig) string {
	port := config.Port
	if port == 0 {
		port = DefaultPort
	}

	u := &url.URL{
		Scheme: "sqlserver",
		Host:   net.JoinHostPort(config.Server, strconv.Itoa(port)),
	}
	if config.User != "" {
		if config.Password != "" {
			u.User = url.UserPassword(config.User, config.Password)
		} else {
			u.User = url.User(config.User)
		}
	}

	query := url.Values{}
	query.Set("database", config.Database)
	if config.Encrypt != "" {
		query.Set("encrypt", config.Encrypt)
	}
	if config.ApplicationName != "" {
		query.Set("app name", config.ApplicationName)
	}
	u.RawQuery = query.Encode()

	return u.String()
}

// ConnectionFlags are the connection settings shared by every command that
// talks to a database.
type ConnectionFlags struct {
	Config     ConnectionConfig
	ConfigFile string
	Profile    string
}

// AddConnectionFlags registers the connection flags on cmd and installs a
// PreRunE that resolves them.
func AddConnectionFlags(cmd *cobra.Command, f *ConnectionFlags) {
	cmd.Flags().StringVar(&f.Config.Server, "server", "", "Database server host (default: localhost)")
	cmd.Flags().IntVar(&f.Config.Port, "port", 0, "Database server port (default: 1433)")
	cmd.Flags().StringVar(&f.Config.Database, "db", "", "Database name (required)")
	cmd.Flags().StringVar(&f.Config.User, "user", "", "Database user name (required)")
	cmd.Flags().StringVar(&f.Config.Password, "password", "", "Database password (optional)")
	cmd.Flags().StringVar(&f.Config.Encrypt, "encrypt", "", "Driver encrypt setting: true, false or disable")
	cmd.Flags().StringVar(&f.Config.ApplicationName, "application-name", "gribble", "Application name reported to the server")
	cmd.Flags().StringVar(&f.ConfigFile, "config", "", "Profile file (default: ./"+DefaultConfigFile+" when present)")
	cmd.Flags().StringVar(&f.Profile, "profile", "", "Profile to read connection defaults from")

	cmd.PreRunE = PreRunEWithConnection(&f.Config, &f.ConfigFile, &f.Profile)
}
