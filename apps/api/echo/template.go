package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
)

type templateApi struct {
	svc      *assessment.Service
	validate *validator.Validate
}

func registerTemplateAPI(g *echo.Group, authed []echo.MiddlewareFunc, s *Server) {
	api := templateApi{svc: s.deps.AssessmentSvc, validate: s.validate}

	tg := g.Group("/templates", authed...)
	tg.GET("", api.query)
	tg.GET("/:id", api.retrieve)
	tg.POST("", api.create, reviewerMiddleware)
	tg.POST("/assemble", api.assemble, reviewerMiddleware)
	tg.PUT("/:id", api.update, reviewerMiddleware)
	tg.PATCH("/:id", api.activate, reviewerMiddleware)
	tg.DELETE("/:id", api.destroy, reviewerMiddleware)
}

func (api *templateApi) create(ctx echo.Context) error {
	var data assessment.NewTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTemplate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	td, err := api.svc.CreateTemplate(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating template")
	}
	return ctx.JSON(http.StatusCreated, td)
}

func (api *templateApi) assemble(ctx echo.Context) error {
	var data assessment.AssembleTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssembleTemplate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	td, err := api.svc.AssembleTemplate(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "assembling template")
	}
	return ctx.JSON(http.StatusCreated, td)
}

func (api *templateApi) query(ctx echo.Context) error {
	filter := new(assessment.TemplateFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []assessment.Template{})
	}
	filter.Clean()

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	templates, err := api.svc.QueryTemplates(ctx.Request().Context(), actor, filter, bindOrdering(ctx, templateOrderings))
	if err != nil {
		return errors.Wrap(err, "querying templates")
	}
	if templates == nil {
		templates = []assessment.Template{}
	}
	return ctx.JSON(http.StatusOK, templates)
}

func (api *templateApi) retrieve(ctx echo.Context) error {
	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	td, err := api.svc.GetTemplate(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding template")
	}
	return ctx.JSON(http.StatusOK, td)
}

func (api *templateApi) update(ctx echo.Context) error {
	var data assessment.UpdateTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTemplate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	td, err := api.svc.UpdateTemplate(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating template")
	}
	return ctx.JSON(http.StatusOK, td)
}

func (api *templateApi) activate(ctx echo.Context) error {
	var data assessment.TemplateActivation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TemplateActivation")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	td, err := api.svc.SetTemplateActive(ctx.Request().Context(), actor, ctx.Param("id"), *data.Active)
	if err != nil {
		return errors.Wrap(err, "toggling template")
	}
	return ctx.JSON(http.StatusOK, td)
}

func (api *templateApi) destroy(ctx echo.Context) error {
	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteTemplate(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting template")
	}
	return ctx.NoContent(http.StatusNoContent)
}
