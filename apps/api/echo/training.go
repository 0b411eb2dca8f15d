package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
)

type trainingApi struct {
	svc *training.Service
	s   *Server
}

func registerTrainingAPI(g *echo.Group, authed []echo.MiddlewareFunc, s *Server) {
	api := trainingApi{svc: s.deps.TrainingSvc, s: s}

	tg := g.Group("/training", authed...)
	tg.GET("/modules", api.queryModules)
	tg.POST("/modules", api.createModule, reviewerMiddleware)
	tg.POST("/modules/:id/complete", api.complete)
	tg.POST("/assignments", api.assign, reviewerMiddleware)
}

type CompleteModuleRequest struct {
	ProfileID string `json:"profile_id"`
}

func (api *trainingApi) queryModules(ctx echo.Context) error {
	modules, err := api.svc.QueryModules(ctx.Request().Context(), ctx.QueryParam("topic_area"))
	if err != nil {
		return errors.Wrap(err, "querying training modules")
	}
	return ctx.JSON(http.StatusOK, modules)
}

func (api *trainingApi) createModule(ctx echo.Context) error {
	var data training.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(api.s.validate); err != nil {
		return err
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	m, err := api.svc.CreateModule(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating training module")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *trainingApi) assign(ctx echo.Context) error {
	var data training.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	data.ModuleID = core.CleanString(data.ModuleID)
	data.ProfileID = core.CleanString(data.ProfileID)
	if err := api.s.validate.Struct(data); err != nil {
		return err
	}
	if _, err := api.s.deps.ProfileSvc.GetByID(ctx.Request().Context(), data.ProfileID); err != nil {
		if core.IsNotFound(err) {
			return core.NewValidationError(nil, core.FieldError{Field: "profile_id", Error: "profile does not exist"})
		}
		return errors.Wrap(err, "finding profile by ID")
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.Assign(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "assigning training module")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *trainingApi) complete(ctx echo.Context) error {
	var data CompleteModuleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteModuleRequest")
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	profileID := core.CleanString(data.ProfileID)
	if profileID == "" {
		profileID = actor.ID
	}
	a, err := api.svc.Complete(ctx.Request().Context(), actor, ctx.Param("id"), profileID)
	if err != nil {
		return errors.Wrap(err, "completing training module")
	}
	return ctx.JSON(http.StatusOK, a)
}
