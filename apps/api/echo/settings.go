package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
)

func registerSettingsAPI(g *echo.Group, authed []echo.MiddlewareFunc, s *Server) {
	svc := s.deps.AssessmentSvc

	sg := g.Group("/settings", authed...)
	sg.GET("", func(ctx echo.Context) error {
		settings, err := svc.Settings(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "loading settings")
		}
		return ctx.JSON(http.StatusOK, settings)
	})
	sg.PUT("", func(ctx echo.Context) error {
		var data assessment.UpdateSettings
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to UpdateSettings")
		}
		if err := data.Validate(s.validate); err != nil {
			return err
		}

		actor, err := getContextProfile(ctx)
		if err != nil {
			return err
		}
		settings, err := svc.UpdateSettings(ctx.Request().Context(), actor, data)
		if err != nil {
			return errors.Wrap(err, "updating settings")
		}
		return ctx.JSON(http.StatusOK, settings)
	}, adminMiddleware)
}
