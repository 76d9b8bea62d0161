package gribble

import (
	"context"
	"database/sql"

	"github.com/alexmaris/gribble/cmd/util"
	"github.com/alexmaris/gribble/ir"
)

// DatabaseConfig holds connection details for a SQL Server database.
type DatabaseConfig struct {
	Server          string // Database server host
	Port            int    // Database server port (default: 1433)
	Database        string // Database name
	User            string // Database user
	Password        string // Database password (optional)
	Encrypt         string // Driver encrypt setting: true, false or disable (optional)
	ApplicationName string // Application name reported to the server (default: "gribble")
}

// Open connects to the configured database. The caller closes the returned
// connection pool.
func Open(ctx context.Context, cfg DatabaseConfig) (*sql.DB, error) {
	if cfg.ApplicationName == "" {
		cfg.ApplicationName = "gribble"
	}
	return util.Connect(ctx, &util.ConnectionConfig{
		Server:          cfg.Server,
		Port:            cfg.Port,
		Database:        cfg.Database,
		User:            cfg.User,
		Password:        cfg.Password,
		Encrypt:         cfg.Encrypt,
		ApplicationName: cfg.ApplicationName,
	})
}

// InspectTable is a convenience function to read the columns and indexes of one table.
func InspectTable(ctx context.Context, cfg DatabaseConfig, table string) ([]ir.Column, []ir.Index, error) {
	conn, err := Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	defer conn.Close()

	db := New(conn)
	columns, err := db.GetColumns(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	indexes, err := db.GetIndexes(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	return columns, indexes, nil
}

// SyncTable is a convenience function to plan and apply the additive
// synchronization of one table. The applied plan is returned.
func SyncTable(ctx context.Context, cfg DatabaseConfig, table string, columns []ir.Column, indexSets [][]string) (*Plan, error) {
	conn, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	db := New(conn)
	p, err := db.PlanTableSync(ctx, table, columns, indexSets)
	if err != nil {
		return nil, err
	}
	if err := db.ApplyPlan(ctx, p); err != nil {
		return p, err
	}
	return p, nil
}
