package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/db"
	"github.com/christopherlanz-debug/dsV2/internal/http/api"
	"github.com/christopherlanz-debug/dsV2/internal/http/api/admin/auth/packets"
	"github.com/christopherlanz-debug/dsV2/internal/http/middleware"
	"github.com/christopherlanz-debug/dsV2/internal/model"
)

type AccountManager struct {
	jwtSecret string
	store     db.Store
}

// AuthPublicModule mounts signup and login, which issue tokens and therefore
// stay outside the JWT group.
func AuthPublicModule(jwtSecret string, store db.Store) api.Module {
	ctl := &AccountManager{jwtSecret: jwtSecret, store: store}
	return api.ModuleFunc(func(g gin.IRoutes) {
		g.POST("/auth/signup", api.ResolveEndpoint(ctl.signup))
		g.POST("/auth/login", api.ResolveEndpoint(ctl.login))
	})
}

// AuthSessionModule mounts the routes that need an authenticated session.
func AuthSessionModule(jwtSecret string, store db.Store) api.Module {
	ctl := &AccountManager{jwtSecret: jwtSecret, store: store}
	return api.ModuleFunc(func(g gin.IRoutes) {
		g.GET("/auth/current_profile", api.ResolveEndpointWithAuth(ctl.currentProfile))
	})
}

func (a *AccountManager) signup(ctx *gin.Context) (any, *api.Error) {
	var req packets.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if existing, _ := a.store.GetUserByEmail(req.Email); existing != nil {
		return nil, &api.Error{Code: http.StatusConflict, Message: "email already registered"}
	}

	hashed, err := middleware.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("[auth] signup: could not hash password")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "something went wrong, please try again"}
	}

	userID, err := a.store.CreateUser(req.Email, hashed, req.Name)
	if err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("[auth] signup: could not create user")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "something went wrong, please try again"}
	}

	token, err := middleware.GenerateJWT(userID, a.jwtSecret)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("[auth] signup: could not generate JWT")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "something went wrong, please try again"}
	}

	return packets.TokenResponse{Token: token}, nil
}

func (a *AccountManager) login(ctx *gin.Context) (any, *api.Error) {
	var req packets.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	user, err := a.store.GetUserByEmail(req.Email)
	if err != nil || user == nil || !middleware.CheckPassword(user.HashedPassword, req.Password) {
		return nil, &api.Error{Code: http.StatusUnauthorized, Message: "invalid email or password"}
	}

	token, err := middleware.GenerateJWT(user.ID, a.jwtSecret)
	if err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("[auth] login: could not generate JWT")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "something went wrong, please try again"}
	}

	return packets.TokenResponse{Token: token}, nil
}

func (a *AccountManager) currentProfile(ctx *gin.Context, user *model.User) (any, *api.Error) {
	return packets.ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}, nil
}
