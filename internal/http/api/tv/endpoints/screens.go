package endpoints

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/db"
	"github.com/christopherlanz-debug/dsV2/internal/http/api"
	"github.com/christopherlanz-debug/dsV2/internal/http/api/tv/packets"
	"github.com/christopherlanz-debug/dsV2/internal/http/middleware"
	"github.com/christopherlanz-debug/dsV2/internal/model"
	"github.com/christopherlanz-debug/dsV2/internal/redis"
	"github.com/christopherlanz-debug/dsV2/internal/schedule"
)

type TvController struct {
	store db.Store
}

func NewTvController(store db.Store) *TvController {
	return &TvController{store: store}
}

// PairingModule mounts the unauthenticated device routes.
func PairingModule(store db.Store) api.Module {
	ctl := NewTvController(store)
	return api.ModuleFunc(func(g gin.IRoutes) {
		g.POST("/screens/register", api.ResolveEndpoint(ctl.register))
	})
}

// DeviceModule mounts routes behind the X-Device-Token middleware.
func DeviceModule(store db.Store) api.Module {
	ctl := NewTvController(store)
	return api.ModuleFunc(func(g gin.IRoutes) {
		g.POST("/screens/heartbeat", api.ResolveEndpointWithScreen(ctl.heartbeat))
		g.GET("/screens/current", ctl.current)
	})
}

// register pairs a device with an existing screen by name and issues its
// device token. Re-registering rotates the token.
func (t *TvController) register(ctx *gin.Context) (any, *api.Error) {
	var req packets.RegisterScreenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	screen, err := t.store.GetScreenByName(req.Name)
	if err != nil || screen == nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "screen not found"}
	}

	token := uuid.NewString()
	if err := t.store.SetScreenDeviceToken(screen.ID, token); err != nil {
		log.Error().Err(err).Int("screen_id", screen.ID).Msg("[tv] register: could not set device token")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not register screen"}
	}

	log.Info().Int("screen_id", screen.ID).Str("name", screen.Name).Msg("[tv] device registered")
	return packets.RegisterScreenResponse{ScreenID: screen.ID, DeviceToken: token}, nil
}

func (t *TvController) heartbeat(ctx *gin.Context, screen *model.Screen) (any, *api.Error) {
	if err := t.store.TouchScreen(screen.ID, time.Now()); err != nil {
		log.Error().Err(err).Int("screen_id", screen.ID).Msg("[tv] heartbeat: could not touch screen")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not record heartbeat"}
	}
	return nil, nil
}

// current returns the playlist the screen should be showing right now, or an
// empty body when nothing is eligible. Supports If-None-Match so idle players
// cost a 304 instead of a payload.
func (t *TvController) current(ctx *gin.Context) {
	screen, ok := middleware.GetCurrentScreen(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unknown device"})
		return
	}

	resp, playlistID, err := t.resolveCurrent(screen)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screen.ID).Msg("[tv] current: could not resolve playlist")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve current playlist"})
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not encode response"})
		return
	}

	sum := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`
	if playlistID != nil {
		redis.SetPlaylistETag(ctx.Request.Context(), *playlistID, etag, time.Hour)
	}

	if match := ctx.GetHeader("If-None-Match"); match != "" && match == etag {
		ctx.Header("ETag", etag)
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Header("ETag", etag)
	ctx.Data(http.StatusOK, "application/json", body)
}

// resolveCurrent applies the eligibility rules: no assignment means nothing
// to show, a playlist with no active schedules is always eligible, otherwise
// any matching active window makes it eligible.
func (t *TvController) resolveCurrent(screen *model.Screen) (packets.CurrentResponse, *int, error) {
	var none packets.CurrentResponse

	var active []model.PlaylistSchedule
	if screen.AssignedPlaylistID != nil {
		var err error
		active, err = t.store.ListActiveSchedules(*screen.AssignedPlaylistID)
		if err != nil {
			return none, nil, err
		}
	}

	playlistID, ok := schedule.Resolve(screen.AssignedPlaylistID, active, schedule.InstantFrom(time.Now()))
	if !ok {
		return none, nil, nil
	}

	pl, err := t.store.GetPlaylistByID(playlistID)
	if err != nil {
		return none, nil, err
	}

	items := make([]packets.CurrentItem, len(pl.Items))
	for i, it := range pl.Items {
		items[i] = packets.CurrentItem{
			ContentItemID: it.ContentItemID,
			Duration:      it.EffectiveDuration(),
		}
		if it.ContentItem != nil {
			items[i].URL = it.ContentItem.URL
			items[i].MimeType = it.ContentItem.MimeType
		}
	}

	return packets.CurrentResponse{
		PlaylistID: &pl.ID,
		Name:       pl.Name,
		Loop:       pl.Loop,
		Shuffle:    pl.Shuffle,
		Items:      items,
	}, &pl.ID, nil
}
