package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/db"
	"github.com/christopherlanz-debug/dsV2/internal/http/api"
	"github.com/christopherlanz-debug/dsV2/internal/http/api/admin/packets"
	"github.com/christopherlanz-debug/dsV2/internal/model"
	"github.com/christopherlanz-debug/dsV2/internal/playback"
	"github.com/christopherlanz-debug/dsV2/internal/schedule"
)

type ScheduleController struct {
	store   db.Store
	manager *playback.Manager
}

func NewScheduleController(store db.Store, manager *playback.Manager) *ScheduleController {
	return &ScheduleController{store: store, manager: manager}
}

// ScheduleModule mounts the schedule routes for api.MountGroup.
func ScheduleModule(store db.Store, manager *playback.Manager) api.Module {
	return api.ModuleFunc(func(g gin.IRoutes) {
		RegisterScheduleRoutes(g, store, manager)
	})
}

func RegisterScheduleRoutes(r gin.IRoutes, store db.Store, manager *playback.Manager) {
	ctl := NewScheduleController(store, manager)

	r.GET("/playlists/:id/schedules", api.ResolveEndpointWithAuth(ctl.listSchedules))
	r.POST("/playlists/:id/schedules", api.ResolveEndpointWithAuth(ctl.createSchedule))
	r.GET("/playlists/:id/schedules/:schedule_id", api.ResolveEndpointWithAuth(ctl.getSchedule))
	r.PUT("/playlists/:id/schedules/:schedule_id", api.ResolveEndpointWithAuth(ctl.updateSchedule))
	r.DELETE("/playlists/:id/schedules/:schedule_id", api.ResolveEndpointWithAuth(ctl.deleteSchedule))
}

// scheduleChanged pushes every running sequencer through an immediate
// re-resolution so eligibility changes take effect without waiting for the
// next tick.
func (sc *ScheduleController) scheduleChanged() {
	if sc.manager != nil {
		sc.manager.ScheduleChanged()
	}
}

func (sc *ScheduleController) ownedPlaylist(id int, user *model.User) *api.Error {
	pl, err := sc.store.GetPlaylistByID(id)
	if err != nil {
		return &api.Error{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	if pl.CreatedBy != user.ID {
		return &api.Error{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return nil
}

func scheduleFromRequest(playlistID, scheduleID int, req packets.CreateScheduleRequest) model.PlaylistSchedule {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return model.PlaylistSchedule{
		ID:         scheduleID,
		PlaylistID: playlistID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Monday:     req.Monday,
		Tuesday:    req.Tuesday,
		Wednesday:  req.Wednesday,
		Thursday:   req.Thursday,
		Friday:     req.Friday,
		Saturday:   req.Saturday,
		Sunday:     req.Sunday,
		IsActive:   active,
	}
}

// validateSchedule runs the window and overlap checks shared by create and
// update.
func (sc *ScheduleController) validateSchedule(s model.PlaylistSchedule) *api.Error {
	if err := schedule.ValidateWindow(s); err != nil {
		return &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	existing, err := sc.store.ListSchedules(s.PlaylistID)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", s.PlaylistID).Msg("[schedule] validate: could not list schedules")
		return &api.Error{Code: http.StatusInternalServerError, Message: "could not validate schedule"}
	}
	if err := schedule.CheckOverlap(s, existing); err != nil {
		if errors.Is(err, schedule.ErrOverlap) {
			return &api.Error{Code: http.StatusConflict, Message: err.Error()}
		}
		return &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return nil
}

func (sc *ScheduleController) listSchedules(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if apiErr := sc.ownedPlaylist(id, user); apiErr != nil {
		return nil, apiErr
	}

	all, err := sc.store.ListSchedules(id)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("[schedule] list: could not list schedules")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list schedules"}
	}

	out := make([]packets.ScheduleResponse, len(all))
	for i, s := range all {
		out[i] = mapSchedule(s)
	}
	return out, nil
}

func (sc *ScheduleController) createSchedule(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if apiErr := sc.ownedPlaylist(id, user); apiErr != nil {
		return nil, apiErr
	}

	var req packets.CreateScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	s := scheduleFromRequest(id, 0, req)
	if apiErr := sc.validateSchedule(s); apiErr != nil {
		return nil, apiErr
	}

	created, err := sc.store.CreateSchedule(s)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("[schedule] create: could not create schedule")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not create schedule"}
	}

	sc.scheduleChanged()
	return mapSchedule(created), nil
}

func (sc *ScheduleController) getSchedule(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if apiErr := sc.ownedPlaylist(id, user); apiErr != nil {
		return nil, apiErr
	}

	scheduleID, _ := strconv.Atoi(ctx.Param("schedule_id"))
	s, err := sc.store.GetScheduleByID(id, scheduleID)
	if err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "schedule not found"}
	}
	return mapSchedule(s), nil
}

func (sc *ScheduleController) updateSchedule(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if apiErr := sc.ownedPlaylist(id, user); apiErr != nil {
		return nil, apiErr
	}

	scheduleID, _ := strconv.Atoi(ctx.Param("schedule_id"))
	if _, err := sc.store.GetScheduleByID(id, scheduleID); err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "schedule not found"}
	}

	var req packets.UpdateScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	s := scheduleFromRequest(id, scheduleID, req)
	if apiErr := sc.validateSchedule(s); apiErr != nil {
		return nil, apiErr
	}

	if err := sc.store.UpdateSchedule(s); err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("[schedule] update: could not update schedule")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not update schedule"}
	}

	sc.scheduleChanged()
	updated, _ := sc.store.GetScheduleByID(id, scheduleID)
	return mapSchedule(updated), nil
}

func (sc *ScheduleController) deleteSchedule(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if apiErr := sc.ownedPlaylist(id, user); apiErr != nil {
		return nil, apiErr
	}

	scheduleID, _ := strconv.Atoi(ctx.Param("schedule_id"))
	if err := sc.store.DeleteSchedule(id, scheduleID); err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("[schedule] delete: could not delete schedule")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not delete schedule"}
	}

	sc.scheduleChanged()
	return nil, nil
}

func mapSchedule(s model.PlaylistSchedule) packets.ScheduleResponse {
	return packets.ScheduleResponse{
		ID:         s.ID,
		PlaylistID: s.PlaylistID,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		Monday:     s.Monday,
		Tuesday:    s.Tuesday,
		Wednesday:  s.Wednesday,
		Thursday:   s.Thursday,
		Friday:     s.Friday,
		Saturday:   s.Saturday,
		Sunday:     s.Sunday,
		IsActive:   s.IsActive,
	}
}
