package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
)

var (
	errObjNotFoundInCtx  = errors.New("profile object not found in echo.Context")
	errNoPermsToSetRoles = "not enough rights to set this role"
)

type profileApi struct {
	svc           *profile.Service
	reset         *profile.PasswordReset
	assessmentSvc *assessment.Service
	trainingSvc   *training.Service
	auth          *Auth
	validate      *validator.Validate
}

func registerProfileAPI(g *echo.Group, authed []echo.MiddlewareFunc, s *Server) {
	api := profileApi{
		svc:           s.deps.ProfileSvc,
		reset:         s.deps.PasswordReset,
		assessmentSvc: s.deps.AssessmentSvc,
		trainingSvc:   s.deps.TrainingSvc,
		auth:          s.auth,
		validate:      s.validate,
	}

	pg := g.Group("/profiles")

	// un-authed endpoints
	pg.POST("/login", api.login)
	pg.POST("/password-reset", api.resetPassword)
	pg.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag := pg.Group("", authed...)
	ag.POST("/token-refresh", api.refreshToken)
	ag.POST("", api.create, adminMiddleware)
	ag.GET("", api.query, reviewerMiddleware)
	ag.DELETE("", api.destroyMultiple, adminMiddleware)
	ag.GET("/roles", api.queryRoles)
	ag.GET("/:id/scores", api.scores)
	ag.GET("/:id/training", api.training)

	// detail endpoints
	dg := ag.Group("/:id", selfOrAdminMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware)
}

// Handlers

func (api *profileApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	token, err := api.auth.authenticate(ctx.Request().Context(), data.Username, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *profileApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.reset.Request(ctx.Request().Context(), data.Email); !(err == nil || core.IsNotFound(err)) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *profileApi) confirmPasswordReset(ctx echo.Context) error {
	var data profile.ResetPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.reset.Confirm(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *profileApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *profileApi) create(ctx echo.Context) error {
	var data profile.NewProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProfile")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	// actor cannot grant a role above their own
	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	if profile.RolePriority(data.Role) > profile.RolePriority(actor.Role) {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: errNoPermsToSetRoles})
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating profile")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *profileApi) query(ctx echo.Context) error {
	filter := new(profile.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []profile.Profile{})
	}
	filter.Clean()

	profiles, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx, profileOrderings))
	if err != nil {
		return errors.Wrap(err, "querying profiles")
	}
	if profiles == nil {
		profiles = []profile.Profile{}
	}
	return ctx.JSON(http.StatusOK, profiles)
}

func (api *profileApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, profile.Roles)
}

func (api *profileApi) retrieve(ctx echo.Context) error {
	p, ok := ctx.Get("object").(profile.Profile)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *profileApi) update(ctx echo.Context) error {
	p, ok := ctx.Get("object").(profile.Profile)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	var data profile.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}

	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		// `IsActive`, `Role`, `Username` and `Email` can only be changed by admin
		if data.IsActive != nil || data.Role != "" || data.Username != "" || data.Email != "" {
			return errHttpForbidden
		}
	}

	if err := data.Validate(ctx.Request().Context(), p, api.validate, api.svc); err != nil {
		return err
	}
	if data.Role != p.Role && profile.RolePriority(data.Role) > profile.RolePriority(actor.Role) {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: errNoPermsToSetRoles})
	}

	p, err = api.svc.Update(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *profileApi) destroy(ctx echo.Context) error {
	p, ok := ctx.Get("object").(profile.Profile)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	// actor cannot delete themselves
	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	if p.ID == actor.ID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), p.ID); err != nil {
		return errors.Wrap(err, "deleting profile")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *profileApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}

	// actor cannot delete themselves
	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	for _, id := range query.IDs {
		if id == actor.ID {
			return errHttpForbidden
		}
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting profiles")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *profileApi) scores(ctx echo.Context) error {
	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	scores, err := api.assessmentSvc.ScoreByArea(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing scores by area")
	}
	return ctx.JSON(http.StatusOK, scores)
}

func (api *profileApi) training(ctx echo.Context) error {
	actor, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	assignments, err := api.trainingSvc.Assignments(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying training assignments")
	}
	return ctx.JSON(http.StatusOK, TrainingResponse{
		Assignments: assignments,
		Progress:    training.RollupProgress(assignments),
	})
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}

	TrainingResponse struct {
		Assignments []training.Assignment   `json:"assignments"`
		Progress    []training.AreaProgress `json:"progress"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
