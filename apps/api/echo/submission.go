package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
)

type submissionApi struct {
	svc      *assessment.Service
	validate *validator.Validate
}

func registerSubmissionAPI(g *echo.Group, authed []echo.MiddlewareFunc, s *Server) {
	api := submissionApi{svc: s.deps.AssessmentSvc, validate: s.validate}

	sg := g.Group("/submissions", authed...)
	sg.POST("", api.start)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id/answers", api.answer)
	sg.POST("/:id/complete", api.complete)
	sg.POST("/:id/review", api.review, reviewerMiddleware)
	sg.POST("/:id/aggregate", api.aggregate, reviewerMiddleware)
	sg.POST("/:id/reopen", api.reopen, reviewerMiddleware)

	rg := g.Group("/review", append(authed[:len(authed):len(authed)], reviewerMiddleware)...)
	rg.GET("/queue", api.queue)
	rg.PUT("/answers/:id", api.reviewAnswer)
}

type (
	AnswersRequest struct {
		Answers []assessment.AnswerInput `json:"answers" validate:"required,min=1,dive"`
	}

	ReviewRequest struct {
		Items []assessment.ReviewItem `json:"items" validate:"required,min=1,dive"`
	}
)

func (api *submissionApi) start(ctx echo.Context) error {
	var data assessment.StartSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StartSubmission")
	}
	data.TemplateID = core.CleanString(data.TemplateID)
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.StartSubmission(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "starting submission")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *submissionApi) query(ctx echo.Context) error {
	filter := new(assessment.SubmissionFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []assessment.Submission{})
	}
	filter.Clean()

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	subs, err := api.svc.QuerySubmissions(ctx.Request().Context(), actor, filter, bindOrdering(ctx, submissionOrderings))
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []assessment.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *submissionApi) retrieve(ctx echo.Context) error {
	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.GetSubmission(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) answer(ctx echo.Context) error {
	var data AnswersRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnswersRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	answers, err := api.svc.SubmitAnswers(ctx.Request().Context(), actor, ctx.Param("id"), data.Answers...)
	if err != nil {
		return errors.Wrap(err, "submitting answers")
	}
	return ctx.JSON(http.StatusOK, answers)
}

func (api *submissionApi) complete(ctx echo.Context) error {
	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.CompleteSubmission(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "completing submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) review(ctx echo.Context) error {
	var data ReviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.ReviewSubmission(ctx.Request().Context(), actor, ctx.Param("id"), data.Items)
	if err != nil {
		return errors.Wrap(err, "reviewing submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) aggregate(ctx echo.Context) error {
	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.AggregateSubmission(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "aggregating submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) reopen(ctx echo.Context) error {
	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.ReopenSubmission(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "reopening submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) queue(ctx echo.Context) error {
	filter := new(assessment.ReviewQueueFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []assessment.PendingReview{})
	}
	filter.Clean()

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	pending, err := api.svc.ReviewQueue(ctx.Request().Context(), actor, filter)
	if err != nil {
		return errors.Wrap(err, "loading review queue")
	}
	if pending == nil {
		pending = []assessment.PendingReview{}
	}
	return ctx.JSON(http.StatusOK, pending)
}

func (api *submissionApi) reviewAnswer(ctx echo.Context) error {
	var data assessment.ReviewInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewInput")
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.ReviewAnswer(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "reviewing answer")
	}
	return ctx.JSON(http.StatusOK, a)
}
