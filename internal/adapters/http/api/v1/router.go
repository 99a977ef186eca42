package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/jobin-logidots/auth-service/internal/adapters/http/api/v1/handlers"
)

type Router struct {
	handlers *handlers.AuthHandler
	authMW   echo.MiddlewareFunc
}

func NewRouter(h *handlers.AuthHandler, authMW echo.MiddlewareFunc) *Router {
	return &Router{handlers: h, authMW: authMW}
}

func (r *Router) Register(g *echo.Group) {
	auth := g.Group("/auth")
	auth.POST("/email/register", r.handlers.Register)
	auth.POST("/email/login", r.handlers.Login)
	auth.POST("/refresh", r.handlers.Refresh)
	auth.POST("/forgot/password", r.handlers.ForgotPassword)
	auth.POST("/reset/password", r.handlers.ResetPassword)

	protected := auth.Group("", r.authMW)
	protected.GET("/me", r.handlers.Me)
	protected.PATCH("/me", r.handlers.UpdateMe)
	protected.DELETE("/me", r.handlers.DeleteMe)
	protected.POST("/logout", r.handlers.Logout)
}
