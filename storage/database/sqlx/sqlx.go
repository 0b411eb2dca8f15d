// Package sqlxrepos implements the repositories on top of jmoiron/sqlx, for postgres and sqlite alike.
// Queries are written with `?` placeholders and rebound to the driver's bind type.
package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

// trapNoRowsErr maps "no rows" errors to `notFound`
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// where accumulates AND-ed conditions of a query.
type where struct {
	clauses []string
	args    []interface{}
}

func (w *where) add(clause string, args ...interface{}) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func orderBy(ordering []core.DBOrdering, fallback string) string {
	if len(ordering) == 0 {
		return " ORDER BY " + fallback
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return " ORDER BY " + strings.Join(orderList, ", ")
}

// build expands `IN (?)` slices of `query` and rebinds it for `ext`.
func build(ext sqlx.ExtContext, query string, args ...interface{}) (string, []interface{}, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, errors.Wrap(err, "building query")
	}
	return ext.Rebind(query), args, nil
}

func checkAffected(res sql.Result, notFound error, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
