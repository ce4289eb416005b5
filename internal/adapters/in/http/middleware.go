package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	actorKey              = "handoff.actor"
	SchedulerSecretHeader = "X-Scheduler-Secret"
)

// AuthConfig configures bearer-token verification. Tokens are issued by the
// external identity provider; the subject claim carries the user id.
type AuthConfig struct {
	Secret string
	Issuer string
	Leeway time.Duration
}

// Authenticate verifies the HS256 bearer token and stores the subject as the
// request's actor.
func Authenticate(cfg AuthConfig, log *logger.Logger) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	secret := []byte(cfg.Secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			raw, ok := bearerToken(ctx.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims := &jwt.RegisteredClaims{}
			_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
				return secret, nil
			})
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, tokenErrorMessage(err))
			}

			actor, err := kernel.UUIDFromString(claims.Subject)
			if err != nil || actor.Validate() != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "token subject is not a user id")
			}

			ctx.Set(actorKey, actor)
			req := ctx.Request()
			ctx.SetRequest(req.WithContext(log.WithActorID(req.Context(), actor.String())))
			return next(ctx)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "token signature is invalid"
	default:
		return "invalid token"
	}
}

// actorFrom returns the authenticated actor. Routes behind Authenticate
// always have one.
func actorFrom(ctx echo.Context) (kernel.UUID, error) {
	actor, ok := ctx.Get(actorKey).(kernel.UUID)
	if !ok {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusUnauthorized, "missing actor")
	}
	return actor, nil
}

// RequireSchedulerSecret guards scheduler endpoints with a shared secret.
func RequireSchedulerSecret(secret string) echo.MiddlewareFunc {
	expected := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			got := []byte(ctx.Request().Header.Get(SchedulerSecretHeader))
			if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid scheduler secret")
			}
			return next(ctx)
		}
	}
}

// RequestLogger attaches the request id to the context logger and writes one
// entry per request.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		BeforeNextFunc: func(ctx echo.Context) {
			req := ctx.Request()
			id := ctx.Response().Header().Get(echo.HeaderXRequestID)
			ctx.SetRequest(req.WithContext(log.WithRequestID(req.Context(), id)))
		},
		LogValuesFunc: func(ctx echo.Context, v middleware.RequestLoggerValues) error {
			reqCtx := log.WithFields(ctx.Request().Context(), map[string]any{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			})
			switch {
			case v.Status >= http.StatusInternalServerError:
				log.Error(reqCtx, "request", v.Error)
			case v.Error != nil:
				log.Warn(reqCtx, "request", v.Error)
			default:
				log.Debug(reqCtx, "request")
			}
			return nil
		},
	})
}
