package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/db"
	"github.com/christopherlanz-debug/dsV2/internal/http/middleware"
)

// Module is a pluggable feature that attaches its endpoints to a router group.
type Module interface {
	Mount(g gin.IRoutes)
}

// ModuleFunc lets you define a Module with a plain function.
type ModuleFunc func(g gin.IRoutes)

func (f ModuleFunc) Mount(g gin.IRoutes) { f(g) }

// GroupConfig tells the api package how to mount a group.
type GroupConfig struct {
	Prefix     string
	Auth       bool   // admin JWT auth
	Device     bool   // X-Device-Token auth for player clients
	SecretKey  string // required if Auth == true
	Store      db.Store
	Middleware []gin.HandlerFunc
}

// MountGroup mounts one or more Modules under a prefix with optional auth.
func MountGroup(parent gin.IRoutes, cfg GroupConfig, modules ...Module) {
	var grp *gin.RouterGroup

	switch v := parent.(type) {
	case *gin.Engine:
		grp = v.Group(cfg.Prefix)
	case *gin.RouterGroup:
		if cfg.Prefix != "" {
			grp = v.Group(cfg.Prefix)
		} else {
			grp = v
		}
	default:
		log.Fatal().Str("type", fmt.Sprintf("%T", parent)).Msg("api.MountGroup: unsupported router type")
	}

	for _, mw := range cfg.Middleware {
		grp.Use(mw)
	}
	if cfg.Auth {
		if cfg.SecretKey == "" {
			log.Fatal().Msg("api.MountGroup: Auth enabled but SecretKey is empty")
		}
		grp.Use(middleware.JWTMiddleware(cfg.SecretKey, cfg.Store))
	}
	if cfg.Device {
		grp.Use(middleware.DeviceMiddleware(cfg.Store))
	}

	for _, m := range modules {
		m.Mount(grp)
	}
}
