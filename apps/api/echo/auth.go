package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
)

const (
	contextTokenKey   = "profileToken"
	contextProfileKey = "profile"
	tokenAudience     = "Voluntariado"
)

// NowFunc is the clock used to stamp and check tokens.
var NowFunc = time.Now

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	IsReviewer   bool   `json:"is_reviewer,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
}

// Auth issues and refreshes the JWTs of the API.
type Auth struct {
	appName         string
	expiration      time.Duration
	refreshDuration time.Duration
	jwtConfig       middleware.JWTConfig
}

func NewAuth(conf *core.Config) *Auth {
	return &Auth{
		appName:         conf.AppName,
		expiration:      conf.Server.JWTExpirationDelta,
		refreshDuration: conf.Server.JWTRefreshExpirationDelta,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
		},
	}
}

func (a *Auth) Claims(p profile.Profile, origIat ...int64) *Claims {
	now := NowFunc()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.appName,
			Subject:   p.ID,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(a.expiration).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     p.Username,
		Email:        p.Email,
		Role:         p.Role,
		IsReviewer:   p.IsReviewer(),
		IsAdmin:      p.IsAdmin(),
	}
}

// GenerateToken generates a signed JWT token string representing the profile Claims.
func (a *Auth) GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(a.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(a.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// TokenFor issues a fresh token for `p`.
func (a *Auth) TokenFor(p profile.Profile) (string, error) {
	return a.GenerateToken(a.Claims(p))
}

func (a *Auth) authenticate(ctx context.Context, uname, pwd string, svc *profile.Service) (string, error) {
	p, err := svc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		if errors.Cause(err) == profile.ErrNotFound {
			return "", errAuthenticationFailed
		}
		return "", errors.Wrap(err, "finding profile by username or email")
	}
	if err = p.CheckPassword(pwd); err != nil {
		return "", errAuthenticationFailed
	}
	if !p.Active() {
		return "", errAccountDeactivated
	}
	if p, err = svc.SetLastLogin(ctx, p); err != nil {
		return "", errors.Wrap(err, "setting lastLogin")
	}
	return a.TokenFor(p)
}

func (a *Auth) refreshToken(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}
	p, err := getContextProfile(ctx)
	if err != nil {
		return "", err
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.refreshDuration)
	if NowFunc().After(expTime) {
		return "", errRefreshExpired
	}
	return a.GenerateToken(a.Claims(p, claims.OrigIssuedAt))
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextProfile returns the acting profile loaded by profileMiddleware.
func getContextProfile(ctx echo.Context) (profile.Profile, error) {
	if p, ok := ctx.Get(contextProfileKey).(profile.Profile); ok {
		return p, nil
	}
	return profile.Profile{}, errUnauthorized
}
