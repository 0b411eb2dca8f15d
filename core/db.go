package core

import (
	"context"
	"database/sql"
)

type (
	DBExecutor interface {
		Exec(query string, args ...interface{}) (sql.Result, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		Query(query string, args ...interface{}) (*sql.Rows, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRow(query string, args ...interface{}) *sql.Row
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	DB interface {
		DBExecutor

		Begin() (*sql.Tx, error)
		BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error)
		PingContext(ctx context.Context) error
		Close() error
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// AllowedOrderings drops orderings on fields absent from `allowed`; `allowed` maps API field names to columns.
func AllowedOrderings(ordering []DBOrdering, allowed map[string]string) []DBOrdering {
	clean := make([]DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		if col, ok := allowed[ord.Field]; ok {
			clean = append(clean, DBOrdering{Field: col, Ascending: ord.Ascending})
		}
	}
	return clean
}
