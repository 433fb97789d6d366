package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/christopherlanz-debug/dsV2/internal/http/middleware"
	"github.com/christopherlanz-debug/dsV2/internal/model"
)

type Error struct {
	Code    int
	Message string
}

type HandlerFuncWithAuth func(ctx *gin.Context, user *model.User) (any, *Error)
type HandlerFuncWithScreen func(ctx *gin.Context, screen *model.Screen) (any, *Error)
type HandlerFunc func(ctx *gin.Context) (any, *Error)

func ResolveEndpointWithAuth(h HandlerFuncWithAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := middleware.GetCurrentUser(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, user)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}

// ResolveEndpointWithScreen adapts handlers behind the device-token middleware.
func ResolveEndpointWithScreen(h HandlerFuncWithScreen) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		screen, ok := middleware.GetCurrentScreen(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unknown device"})
			return
		}

		result, apiErr := h(ctx, screen)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}

		if result == nil {
			ctx.Status(http.StatusNoContent)
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}
