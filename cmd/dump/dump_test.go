package dump

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmaris/gribble"
	"github.com/alexmaris/gribble/internal/schema"
	"github.com/alexmaris/gribble/internal/tsql"
	"github.com/alexmaris/gribble/ir"
)

func expectTable(t *testing.T, mock sqlmock.Sqlmock, table string, columns, indexes *sqlmock.Rows) {
	t.Helper()
	w := schema.NewWriter(tsql.SQLServer)
	arg := sql.Named(schema.TableParam, "["+table+"]")

	stmt, err := w.GetColumns(table)
	require.NoError(t, err)
	mock.ExpectQuery(stmt.Text).WithArgs(arg).WillReturnRows(columns)
	if indexes == nil {
		return
	}
	stmt, err = w.GetIndexes(table)
	require.NoError(t, err)
	mock.ExpectQuery(stmt.Text).WithArgs(arg).WillReturnRows(indexes)
}

func columnRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"Name", "SystemTypeId", "TypeName", "MaxLength", "Precision", "Scale",
		"IsNullable", "IsIdentity", "IsPrimaryKey", "IsClustered",
		"DefaultDefinition", "ComputedDefinition", "IsPersisted",
	})
}

func indexRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"IndexName", "IsClustered", "IsUnique", "IsPrimaryKey", "ColumnName", "IsDescending"})
}

func TestCollectTables(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer conn.Close()
	db := gribble.New(conn, gribble.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	expectTable(t, mock, "Users",
		columnRows().
			AddRow("Id", 56, "int", 4, 10, 0, false, true, true, true, nil, nil, false).
			AddRow("Name", 231, "nvarchar", 1000, 0, 0, true, false, false, false, nil, nil, false),
		indexRows().
			AddRow("IX_Users_Name", false, false, false, "Name", false).
			AddRow("PK_Users", true, true, true, "Id", false))
	expectTable(t, mock, "Tags",
		columnRows().AddRow("Label", 231, "nvarchar", 200, 0, 0, false, false, false, false, nil, nil, false),
		indexRows())

	tables, err := CollectTables(context.Background(), db, []string{"Users", "Tags"})
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "Users", tables[0].Table)
	assert.Len(t, tables[0].Steps, 2)
	assert.Equal(t, "Tags", tables[1].Table)
	require.Len(t, tables[1].Steps, 1)

	create, err := schema.NewWriter(tsql.SQLServer).CreateTable("Tags",
		ir.Column{Name: "Label", Type: ir.ScalarString, NativeTypeName: "nvarchar", Length: 100})
	require.NoError(t, err)
	assert.Equal(t, create.Text, tables[1].Steps[0].Statement.Text)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectTables_MissingTable(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer conn.Close()
	db := gribble.New(conn, gribble.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	expectTable(t, mock, "Ghost", columnRows(), nil)

	_, err = CollectTables(context.Background(), db, []string{"Ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table Ghost does not exist")
	require.NoError(t, mock.ExpectationsWereMet())
}
