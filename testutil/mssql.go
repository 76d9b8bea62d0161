// Package testutil provides shared test utilities for gribble
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"testing"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mssql"
)

// DefaultPassword satisfies the SQL Server password policy.
const DefaultPassword = "Gribble#Passw0rd"

var suppressedLogger = log.New(io.Discard, "", 0)

// getImage returns the SQL Server image to use for testing.
// It reads from the GRIBBLE_MSSQL_IMAGE environment variable,
// defaulting to SQL Server 2022 if not set.
func getImage() string {
	if image := os.Getenv("GRIBBLE_MSSQL_IMAGE"); image != "" {
		return image
	}
	return "mcr.microsoft.com/mssql/server:2022-CU14-ubuntu-22.04"
}

// ContainerInfo holds SQL Server container connection details
type ContainerInfo struct {
	Container testcontainers.Container
	Host      string
	Port      int
	User      string
	Password  string
	DSN       string
	Conn      *sql.DB
}

// SetupMSSQLContainer starts a SQL Server container and connects to its
// master database.
func SetupMSSQLContainer(ctx context.Context, t *testing.T) *ContainerInfo {
	t.Helper()

	container, err := mssql.Run(ctx, getImage(),
		mssql.WithAcceptEULA(),
		mssql.WithPassword(DefaultPassword),
		testcontainers.WithLogger(suppressedLogger),
	)
	if err != nil {
		t.Fatalf("Failed to start container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "encrypt=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	conn, err := sql.Open("sqlserver", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "1433/tcp")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return &ContainerInfo{
		Container: container,
		Host:      host,
		Port:      port.Int(),
		User:      "sa",
		Password:  DefaultPassword,
		DSN:       dsn,
		Conn:      conn,
	}
}

// Terminate cleans up the container and connection
func (ci *ContainerInfo) Terminate(ctx context.Context, t *testing.T) {
	ci.Conn.Close()
	if err := ci.Container.Terminate(ctx); err != nil {
		t.Logf("Failed to terminate container: %v", err)
	}
}
