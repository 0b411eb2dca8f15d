package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
)

type questionApi struct {
	svc      *assessment.Service
	validate *validator.Validate
}

func registerQuestionAPI(g *echo.Group, authed []echo.MiddlewareFunc, s *Server) {
	api := questionApi{svc: s.deps.AssessmentSvc, validate: s.validate}

	qg := g.Group("/questions", append(authed[:len(authed):len(authed)], reviewerMiddleware)...)
	qg.POST("", api.create)
	qg.GET("", api.query)
	qg.GET("/:id", api.retrieve)
	qg.PUT("/:id", api.update)
	qg.DELETE("/:id", api.destroy)
}

func (api *questionApi) create(ctx echo.Context) error {
	var data assessment.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	q, err := api.svc.CreateQuestion(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating question")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *questionApi) query(ctx echo.Context) error {
	filter := new(assessment.QuestionFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []assessment.Question{})
	}
	filter.Clean()

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	questions, err := api.svc.QueryQuestions(ctx.Request().Context(), actor, filter, bindOrdering(ctx, questionOrderings))
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	if questions == nil {
		questions = []assessment.Question{}
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *questionApi) retrieve(ctx echo.Context) error {
	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	q, err := api.svc.GetQuestion(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding question")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *questionApi) update(ctx echo.Context) error {
	var data assessment.UpdateQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	q, err := api.svc.UpdateQuestion(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating question")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *questionApi) destroy(ctx echo.Context) error {
	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteQuestion(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return ctx.NoContent(http.StatusNoContent)
}
