package postgres

import (
	"context"
	"database/sql"
)

// Queryer é satisfeito tanto por *Connection quanto por *sql.Tx
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
