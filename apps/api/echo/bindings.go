package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

var orderingParam = "ordering"

// orderable fields, per resource: {API field: column}
var (
	profileOrderings = map[string]string{
		"name": "name", "username": "username", "email": "email", "role": "role",
		"created_at": "created_at", "last_login": "last_login",
	}
	questionOrderings = map[string]string{
		"topic_area": "topic_area", "type": "type", "points": "points", "created_at": "created_at",
	}
	templateOrderings = map[string]string{
		"title": "title", "topic_area": "topic_area", "created_at": "created_at",
	}
	submissionOrderings = map[string]string{
		"status": "status", "percentage": "percentage", "topic_area": "topic_area",
		"completed_at": "completed_at", "created_at": "created_at",
	}
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=field,-field` and keeps the fields found in `allowed`.
func (ord *Ordering) Bind(ctx echo.Context, allowed map[string]string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	var requested []core.DBOrdering
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		requested = append(requested, core.DBOrdering{Field: field, Ascending: !descending})
	}
	ord.Orderings = core.AllowedOrderings(requested, allowed)
}

func bindOrdering(ctx echo.Context, allowed map[string]string) []core.DBOrdering {
	ord := new(Ordering)
	ord.Bind(ctx, allowed)
	return ord.Orderings
}
