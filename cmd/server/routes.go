package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/christopherlanz-debug/dsV2/internal/config"
	"github.com/christopherlanz-debug/dsV2/internal/db"
	"github.com/christopherlanz-debug/dsV2/internal/http/api"
	"github.com/christopherlanz-debug/dsV2/internal/playback"
	"github.com/christopherlanz-debug/dsV2/internal/playlist"
	"github.com/christopherlanz-debug/dsV2/internal/storage"

	adminapi "github.com/christopherlanz-debug/dsV2/internal/http/api/admin/endpoints"
	authapi "github.com/christopherlanz-debug/dsV2/internal/http/api/admin/auth/endpoints"
	tvapi "github.com/christopherlanz-debug/dsV2/internal/http/api/tv/endpoints"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	store db.Store,
	storageSystem storage.Storage,
	playlists *playlist.Service,
	manager *playback.Manager,
) {
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"If-None-Match",
			"X-Device-Token",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"ETag",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
	},
		authapi.AuthPublicModule(cfg.JWTSecret, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Store:     store,
	},
		authapi.AuthSessionModule(cfg.JWTSecret, store),
		adminapi.ContentModule(store, storageSystem),
		adminapi.PlaylistModule(store, playlists, manager),
		adminapi.ScheduleModule(store, manager),
		adminapi.ScreenModule(store, manager, cfg.LivenessWindow),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/tv",
	},
		tvapi.PairingModule(store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/tv",
		Device: true,
		Store:  store,
	},
		tvapi.DeviceModule(store),
	)

	if !cfg.UseSpaces {
		r.Static("/uploads", cfg.UploadDir)
	}
}
