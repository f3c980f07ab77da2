package router

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/BolajiAkerele2013/Cookit/internal/config"
	"github.com/BolajiAkerele2013/Cookit/internal/errors"
	"github.com/BolajiAkerele2013/Cookit/internal/handler"
	"github.com/BolajiAkerele2013/Cookit/internal/service"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Health *handler.HealthHandler
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Idea   *handler.IdeaHandler
	Role   *handler.RoleHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, log *slog.Logger, identity service.AuthService, h Handlers) {
	e.HTTPErrorHandler = errorHandler(log)
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
	}))
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.GetCORSAllowedOrigins(),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.GET("/health", h.Health.Health)
	api.GET("/readyz", h.Health.Ready)
	api.POST("/auth/signup", h.Auth.SignUp)
	api.POST("/auth/login", h.Auth.Login)

	// Everything else requires a bearer token
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.UserIDContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return identity.ResolveToken(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.KindOf(err) == errors.KindStore {
				return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
					Error: "internal server error",
					Code:  "INTERNAL_ERROR",
				}).SetInternal(err)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: errors.ErrUnauthorized.Message,
				Code:  errors.ErrUnauthorized.Code,
			}).SetInternal(err)
		},
	}))

	secured.GET("/users/me", h.User.GetMe)
	secured.PUT("/users/me", h.User.UpdateMe)

	secured.POST("/ideas", h.Idea.Create)
	secured.GET("/ideas", h.Idea.List)
	secured.GET("/ideas/:id", h.Idea.Get)
	secured.PUT("/ideas/:id", h.Idea.Update)

	secured.POST("/ideas/:id/roles", h.Role.Add)
	secured.GET("/ideas/:id/roles", h.Role.List)
	secured.DELETE("/ideas/:id/roles/:roleId", h.Role.Remove)
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			switch {
			case v.Status >= http.StatusInternalServerError:
				level = slog.LevelError
			case v.Status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			log.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			)
			return nil
		},
	})
}

// errorHandler writes every error as an ErrorResponse and logs server-side failures.
func errorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := errors.ErrorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}

		var he *echo.HTTPError
		if stderrors.As(err, &he) {
			status = he.Code
			switch m := he.Message.(type) {
			case errors.ErrorResponse:
				body = m
			case string:
				body = errors.ErrorResponse{Error: m}
			default:
				body = errors.ErrorResponse{Error: http.StatusText(status)}
			}
			if status >= http.StatusInternalServerError {
				cause := he.Internal
				if cause == nil {
					cause = he
				}
				log.ErrorContext(c.Request().Context(), "request failed",
					slog.String("uri", c.Request().RequestURI),
					slog.Any("error", cause),
				)
			}
		} else {
			log.ErrorContext(c.Request().Context(), "unhandled error",
				slog.String("uri", c.Request().RequestURI),
				slog.Any("error", err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error("write error response", slog.Any("error", err))
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
