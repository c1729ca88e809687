package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hoshiyaar/paathshala/core/learner"
)

var contextLearnerKey = "learner"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	IsAdmin  bool   `json:"is_admin,omitempty"`
}

func (s *Server) getLearnerClaims(l learner.Learner) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.deps.Conf.AppName,
			Subject:   l.ID,
			Audience:  "Paathshala",
			ExpiresAt: now.Add(s.deps.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: l.Username,
		IsAdmin:  l.IsAdmin(),
	}
}

func (s *Server) authenticate(ctx context.Context, creds learner.Credentials) (*Claims, learner.Learner, error) {
	l, err := s.deps.LearnerSvc.Authenticate(ctx, creds)
	if err != nil {
		return nil, learner.Learner{}, err
	}
	return s.getLearnerClaims(l), l, nil
}

// generateToken generates a signed JWT token string representing the claims.
func (s *Server) generateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(s.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(s.jwtConfig.SigningKey.([]byte))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get("userToken").(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func (s *Server) getContextLearner(ctx echo.Context) (learner.Learner, error) {
	if l, ok := ctx.Get(contextLearnerKey).(learner.Learner); ok {
		return l, nil
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return learner.Learner{}, err
	}
	l, err := s.deps.LearnerSvc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return learner.Learner{}, errors.Wrap(err, "finding learner by ID")
	}
	ctx.Set(contextLearnerKey, l)
	return l, nil
}

// adminMiddleware restricts an endpoint to admin accounts.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if !claims.IsAdmin {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
