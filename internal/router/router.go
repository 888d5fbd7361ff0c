package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"crewcall/internal/auth"
	"crewcall/internal/config"
	"crewcall/internal/handler"
	"crewcall/internal/session"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	sessions *session.Manager,
	tokens auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	meHandler *handler.MeHandler,
	productionHandler *handler.ProductionHandler,
	requirementHandler *handler.RequirementHandler,
	assignmentHandler *handler.AssignmentHandler,
	messageHandler *handler.MessageHandler,
	notificationHandler *handler.NotificationHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		if !sessions.Initialized() {
			return c.String(http.StatusServiceUnavailable, "initializing")
		}
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", readinessGate(sessions))

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/reset-password", authHandler.ResetPassword)
	api.POST("/auth/reset-password/confirm", authHandler.ConfirmReset)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(handler.TokenClaims)
		},
	}), blacklistGate(tokens))

	secured.GET("/me", meHandler.GetMe)
	secured.PUT("/me", meHandler.UpdateMe)
	secured.GET("/me/route", meHandler.GetRoute)
	secured.GET("/me/assignments", assignmentHandler.ListMine)
	secured.POST("/me/push-token", meHandler.RegisterPushToken)
	secured.DELETE("/me/push-token", meHandler.UnregisterPushToken)

	// Production routes
	secured.POST("/productions", productionHandler.Create)
	secured.GET("/productions", productionHandler.List)
	secured.GET("/productions/:id", productionHandler.Get)
	secured.PUT("/productions/:id", productionHandler.Update)
	secured.PATCH("/productions/:id/status", productionHandler.UpdateStatus)
	secured.DELETE("/productions/:id", productionHandler.Delete)

	// Requirement routes
	secured.POST("/productions/:id/requirements", requirementHandler.Create)
	secured.GET("/productions/:id/requirements", requirementHandler.List)
	secured.PUT("/requirements/:id", requirementHandler.Update)
	secured.DELETE("/requirements/:id", requirementHandler.Delete)

	// Assignment routes
	secured.POST("/assignments", assignmentHandler.Assign)
	secured.GET("/productions/:id/assignments", assignmentHandler.ListByProduction)
	secured.PATCH("/assignments/:id/status", assignmentHandler.SetStatus)

	// Message routes
	secured.POST("/productions/:id/messages", messageHandler.Post)
	secured.GET("/productions/:id/messages", messageHandler.List)

	// Notification routes
	secured.GET("/notifications", notificationHandler.List)
	secured.GET("/notifications/stream", notificationHandler.Stream)
	secured.POST("/notifications/:id/read", notificationHandler.MarkRead)
	secured.POST("/notifications/read-all", notificationHandler.MarkAllRead)
}

// readinessGate holds all traffic back until the session manager has left
// its Uninitialized state, so no request observes pre-initialization state.
func readinessGate(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !sessions.Initialized() {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "service initializing")
			}
			return next(c)
		}
	}
}

// blacklistGate rejects access tokens revoked by logout.
func blacklistGate(tokens auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return next(c)
			}
			claims, ok := token.Claims.(*handler.TokenClaims)
			if !ok || claims.ID == "" {
				return next(c)
			}
			blacklisted, _ := tokens.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if blacklisted {
				return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
			}
			return next(c)
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
