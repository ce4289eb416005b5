package http

import (
	"net/http"
	"sync"

	"handoff/internal/adapters/in/http/api"
	"handoff/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

const swaggerInstance = "handoff"

var registerSwagger sync.Once

type swaggerDoc struct{}

func (swaggerDoc) ReadDoc() string { return string(api.SpecJSON()) }

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Server          *Server
	Log             *logger.Logger
	Gatherer        prometheus.Gatherer
	Auth            AuthConfig
	SchedulerSecret string
	EchoLogLevel    log.Lvl
}

// NewRouter builds the echo instance serving the public API under /api/v1,
// the scheduler endpoint under /internal, and the operational routes.
func NewRouter(opts RouterOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(opts.EchoLogLevel)
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.RequestID())
	e.Use(RequestLogger(opts.Log))
	e.Use(middleware.Recover())

	e.GET("/health", func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "Healthy")
	})
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/openapi.json", func(ctx echo.Context) error {
		return ctx.JSONBlob(http.StatusOK, api.SpecJSON())
	})

	registerSwagger.Do(func() {
		swag.Register(swaggerInstance, swaggerDoc{})
	})
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(
		echoSwagger.InstanceName(swaggerInstance),
		echoSwagger.URL("/openapi.json"),
	))

	v1 := e.Group("/api/v1", Authenticate(opts.Auth, opts.Log))
	api.RegisterHandlers(v1, opts.Server)

	internal := e.Group("/internal", RequireSchedulerSecret(opts.SchedulerSecret))
	api.RegisterSchedulerHandlers(internal, opts.Server)

	return e
}
