package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
)

// profileMiddleware loads the profile behind the JWT into the context. Deactivated profiles are turned away.
func profileMiddleware(svc *profile.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			p, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
			if err != nil {
				if core.IsNotFound(err) {
					return errUnauthorized
				}
				return errors.Wrap(err, "finding profile by ID")
			}
			if !p.Active() {
				return errAccountDeactivated
			}
			ctx.Set(contextProfileKey, p)
			return next(ctx)
		}
	}
}

func adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := getContextProfile(ctx)
		if err != nil {
			return err
		}
		if !p.IsAdmin() {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

func reviewerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := getContextProfile(ctx)
		if err != nil {
			return err
		}
		if !p.IsReviewer() {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

// selfOrAdminMiddleware puts the profile named by the `:id` param into the context as "object".
// Anyone else gets a 404.
func selfOrAdminMiddleware(svc *profile.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			actor, err := getContextProfile(ctx)
			if err != nil {
				return err
			}
			id := ctx.Param("id")
			if id == actor.ID || actor.IsAdmin() {
				if p, err := svc.GetByID(ctx.Request().Context(), id); err == nil {
					ctx.Set("object", p)
					return next(ctx)
				} else if errors.Cause(err) != profile.ErrNotFound {
					return errors.Wrap(err, "finding profile by ID")
				}
			}
			return errHttpNotFound
		}
	}
}
