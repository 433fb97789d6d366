package endpoints

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/db"
	"github.com/christopherlanz-debug/dsV2/internal/http/api"
	"github.com/christopherlanz-debug/dsV2/internal/http/api/admin/packets"
	"github.com/christopherlanz-debug/dsV2/internal/model"
	"github.com/christopherlanz-debug/dsV2/internal/playback"
	"github.com/christopherlanz-debug/dsV2/internal/redis"
)

type ScreenController struct {
	store          db.Store
	manager        *playback.Manager
	livenessWindow time.Duration
}

func NewScreenController(store db.Store, manager *playback.Manager, livenessWindow time.Duration) *ScreenController {
	return &ScreenController{store: store, manager: manager, livenessWindow: livenessWindow}
}

// ScreenModule mounts the screen routes for api.MountGroup.
func ScreenModule(store db.Store, manager *playback.Manager, livenessWindow time.Duration) api.Module {
	return api.ModuleFunc(func(g gin.IRoutes) {
		RegisterScreenRoutes(g, store, manager, livenessWindow)
	})
}

func RegisterScreenRoutes(r gin.IRoutes, store db.Store, manager *playback.Manager, livenessWindow time.Duration) {
	ctl := NewScreenController(store, manager, livenessWindow)

	r.GET("/screens", api.ResolveEndpointWithAuth(ctl.listScreens))
	r.POST("/screens", api.ResolveEndpointWithAuth(ctl.createScreen))
	r.GET("/screens/:id", api.ResolveEndpointWithAuth(ctl.getScreen))
	r.PUT("/screens/:id", api.ResolveEndpointWithAuth(ctl.updateScreen))
	r.DELETE("/screens/:id", api.ResolveEndpointWithAuth(ctl.deleteScreen))

	r.POST("/screens/:id/playlist", api.ResolveEndpointWithAuth(ctl.assignPlaylist))
	r.DELETE("/screens/:id/playlist", api.ResolveEndpointWithAuth(ctl.unassignPlaylist))

	r.POST("/screens/:id/refresh", api.ResolveEndpointWithAuth(ctl.refreshScreen))
	r.POST("/screens/:id/pause", api.ResolveEndpointWithAuth(ctl.pauseScreen))
	r.POST("/screens/:id/resume", api.ResolveEndpointWithAuth(ctl.resumeScreen))
}

func (s *ScreenController) owned(id int, user *model.User) (model.Screen, *api.Error) {
	screen, err := s.store.GetScreenByID(id)
	if err != nil {
		return model.Screen{}, &api.Error{Code: http.StatusNotFound, Message: "screen not found"}
	}
	if screen.CreatedBy != user.ID {
		return model.Screen{}, &api.Error{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return screen, nil
}

func (s *ScreenController) listScreens(ctx *gin.Context, user *model.User) (any, *api.Error) {
	screens, err := s.store.ListScreens()
	if err != nil {
		log.Error().Err(err).Msg("[screen] list: could not list screens")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list screens"}
	}

	now := time.Now()
	out := make([]packets.ScreenResponse, 0, len(screens))
	for _, sc := range screens {
		if sc.CreatedBy != user.ID {
			continue
		}
		out = append(out, s.mapScreen(sc, now))
	}
	return out, nil
}

func (s *ScreenController) createScreen(ctx *gin.Context, user *model.User) (any, *api.Error) {
	var req packets.CreateScreenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if existing, _ := s.store.GetScreenByName(req.Name); existing != nil {
		return nil, &api.Error{Code: http.StatusConflict, Message: "screen name already taken"}
	}

	screen, err := s.store.CreateScreen(req.Name, req.Location, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("[screen] create: could not create screen")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not create screen"}
	}

	if s.manager != nil {
		s.manager.StartScreen(screen.ID)
	}
	return s.mapScreen(screen, time.Now()), nil
}

func (s *ScreenController) getScreen(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	screen, apiErr := s.owned(id, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return s.mapScreen(screen, time.Now()), nil
}

func (s *ScreenController) updateScreen(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if _, apiErr := s.owned(id, user); apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateScreenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := s.store.UpdateScreen(id, req.Name, req.Location); err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("[screen] update: could not update screen")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not update screen"}
	}

	updated, _ := s.store.GetScreenByID(id)
	return s.mapScreen(updated, time.Now()), nil
}

// deleteScreen tears the screen down. Its playback loop stops immediately and
// any in-flight work for it is discarded.
func (s *ScreenController) deleteScreen(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if _, apiErr := s.owned(id, user); apiErr != nil {
		return nil, apiErr
	}

	if s.manager != nil {
		s.manager.StopScreen(id)
	}
	if err := s.store.DeleteScreen(id); err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("[screen] delete: could not delete screen")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not delete screen"}
	}
	return nil, nil
}

func (s *ScreenController) assignPlaylist(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if _, apiErr := s.owned(id, user); apiErr != nil {
		return nil, apiErr
	}

	var req packets.AssignPlaylistToScreenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if _, err := s.store.GetPlaylistByID(req.PlaylistID); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid playlist_id"}
	}

	if err := s.store.AssignPlaylistToScreen(id, &req.PlaylistID); err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("[screen] assign: could not assign playlist")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not assign playlist"}
	}

	s.kickScreen(id)
	updated, _ := s.store.GetScreenByID(id)
	return s.mapScreen(updated, time.Now()), nil
}

func (s *ScreenController) unassignPlaylist(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if _, apiErr := s.owned(id, user); apiErr != nil {
		return nil, apiErr
	}

	if err := s.store.AssignPlaylistToScreen(id, nil); err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("[screen] unassign: could not clear playlist")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not clear playlist"}
	}

	s.kickScreen(id)
	updated, _ := s.store.GetScreenByID(id)
	return s.mapScreen(updated, time.Now()), nil
}

func (s *ScreenController) refreshScreen(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if _, apiErr := s.owned(id, user); apiErr != nil {
		return nil, apiErr
	}
	s.kickScreen(id)
	return gin.H{"status": "refreshing"}, nil
}

func (s *ScreenController) pauseScreen(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if _, apiErr := s.owned(id, user); apiErr != nil {
		return nil, apiErr
	}
	if s.manager != nil {
		s.manager.Pause(id)
	}
	return gin.H{"status": "paused"}, nil
}

func (s *ScreenController) resumeScreen(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if _, apiErr := s.owned(id, user); apiErr != nil {
		return nil, apiErr
	}
	if s.manager != nil {
		s.manager.Resume(id)
	}
	return gin.H{"status": "resumed"}, nil
}

// kickScreen forces an immediate re-resolution locally and tells sibling
// processes to do the same.
func (s *ScreenController) kickScreen(id int) {
	redis.PublishRefresh(context.Background(), id)
	if s.manager != nil {
		s.manager.Refresh(id)
	}
}

func (s *ScreenController) mapScreen(sc model.Screen, now time.Time) packets.ScreenResponse {
	var lastSeen *string
	if sc.LastSeen != nil {
		ts := sc.LastSeen.Format(time.RFC3339)
		lastSeen = &ts
	}
	var playbackState *string
	if s.manager != nil {
		if st, running := s.manager.ScreenState(sc.ID); running {
			str := st.String()
			playbackState = &str
		}
	}
	return packets.ScreenResponse{
		ID:                 sc.ID,
		Name:               sc.Name,
		Location:           sc.Location,
		AssignedPlaylistID: sc.AssignedPlaylistID,
		Online:             sc.Online(now, s.livenessWindow),
		PlaybackState:      playbackState,
		LastSeen:           lastSeen,
		CreatedAt:          sc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          sc.UpdatedAt.Format(time.RFC3339),
	}
}
