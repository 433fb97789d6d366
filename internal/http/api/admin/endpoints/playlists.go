package endpoints

import (
	"context"
	"errors"
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
	"github.com/christopherlanz-debug/dsV2/internal/playlist"
	"github.com/christopherlanz-debug/dsV2/internal/redis"
)

type PlaylistController struct {
	store     db.Store
	playlists *playlist.Service
	manager   *playback.Manager
}

func NewPlaylistController(store db.Store, playlists *playlist.Service, manager *playback.Manager) *PlaylistController {
	return &PlaylistController{store: store, playlists: playlists, manager: manager}
}

// PlaylistModule mounts the playlist routes for api.MountGroup.
func PlaylistModule(store db.Store, playlists *playlist.Service, manager *playback.Manager) api.Module {
	return api.ModuleFunc(func(g gin.IRoutes) {
		RegisterPlaylistRoutes(g, store, playlists, manager)
	})
}

func RegisterPlaylistRoutes(r gin.IRoutes, store db.Store, playlists *playlist.Service, manager *playback.Manager) {
	ctl := NewPlaylistController(store, playlists, manager)

	r.GET("/playlists", api.ResolveEndpointWithAuth(ctl.listPlaylists))
	r.POST("/playlists", api.ResolveEndpointWithAuth(ctl.createPlaylist))
	r.GET("/playlists/:id", api.ResolveEndpointWithAuth(ctl.getPlaylist))
	r.PUT("/playlists/:id", api.ResolveEndpointWithAuth(ctl.updatePlaylist))
	r.DELETE("/playlists/:id", api.ResolveEndpointWithAuth(ctl.deletePlaylist))

	r.GET("/playlists/:id/items", api.ResolveEndpointWithAuth(ctl.listItems))
	r.POST("/playlists/:id/items", api.ResolveEndpointWithAuth(ctl.addItem))
	r.DELETE("/playlists/:id/items/:item_id", api.ResolveEndpointWithAuth(ctl.removeItem))
	r.PUT("/playlists/:id/items", api.ResolveEndpointWithAuth(ctl.reorderItems))
}

// notifyPlaylistUpdated drops the cached ETag so polling clients see fresh
// content, then tells the playback engine to re-anchor any running sequencer.
func (p *PlaylistController) notifyPlaylistUpdated(playlistID int) {
	redis.InvalidatePlaylistETag(context.Background(), playlistID)

	screens, err := p.store.ListScreensUsingPlaylist(playlistID)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("[playlist] notify: could not list screens")
	} else {
		for _, s := range screens {
			redis.PublishRefresh(context.Background(), s.ID)
		}
	}

	if p.manager != nil {
		p.manager.PlaylistChanged(playlistID)
	}
}

func (p *PlaylistController) owned(id int, user *model.User) (model.Playlist, *api.Error) {
	pl, err := p.store.GetPlaylistByID(id)
	if err != nil {
		return model.Playlist{}, &api.Error{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	if pl.CreatedBy != user.ID {
		return model.Playlist{}, &api.Error{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return pl, nil
}

func (p *PlaylistController) listPlaylists(ctx *gin.Context, user *model.User) (any, *api.Error) {
	all, err := p.store.ListPlaylists()
	if err != nil {
		log.Error().Err(err).Msg("[playlist] list: could not list playlists")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list playlists"}
	}

	out := make([]packets.PlaylistResponse, 0, len(all))
	for _, pl := range all {
		if pl.CreatedBy != user.ID {
			continue
		}
		out = append(out, mapPlaylist(pl))
	}
	return out, nil
}

func (p *PlaylistController) createPlaylist(ctx *gin.Context, user *model.User) (any, *api.Error) {
	var req packets.CreatePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	pl, err := p.store.CreatePlaylist(req.Name, req.Description, req.Loop, req.Shuffle, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("[playlist] create: could not create playlist")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not create playlist"}
	}
	return mapPlaylist(pl), nil
}

func (p *PlaylistController) getPlaylist(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	pl, apiErr := p.owned(id, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapPlaylist(pl), nil
}

func (p *PlaylistController) updatePlaylist(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if _, apiErr := p.owned(id, user); apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdatePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := p.store.UpdatePlaylist(id, req.Name, req.Description, req.Loop, req.Shuffle); err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("[playlist] update: could not update playlist")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not update playlist"}
	}

	go p.notifyPlaylistUpdated(id)

	full, _ := p.store.GetPlaylistByID(id)
	return mapPlaylist(full), nil
}

// deletePlaylist removes a playlist. Screens pointing at it lose their
// assignment and fall back to showing nothing.
func (p *PlaylistController) deletePlaylist(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if _, apiErr := p.owned(id, user); apiErr != nil {
		return nil, apiErr
	}

	screens, err := p.store.ListScreensUsingPlaylist(id)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("[playlist] delete: could not list screens")
	}

	if err := p.store.ClearPlaylistAssignments(id); err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("[playlist] delete: could not clear assignments")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not delete playlist"}
	}
	if err := p.store.DeletePlaylist(id); err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("[playlist] delete: could not delete playlist")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not delete playlist"}
	}

	p.playlists.Invalidate(id)
	redis.InvalidatePlaylistETag(context.Background(), id)
	for _, s := range screens {
		redis.PublishRefresh(context.Background(), s.ID)
		if p.manager != nil {
			p.manager.Refresh(s.ID)
		}
	}
	return nil, nil
}

func (p *PlaylistController) listItems(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if _, apiErr := p.owned(id, user); apiErr != nil {
		return nil, apiErr
	}

	items, err := p.store.ListPlaylistItems(id)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("[playlist] items: could not list items")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list playlist items"}
	}

	out := make([]packets.PlaylistItemResponse, len(items))
	for i, it := range items {
		out[i] = mapItem(it)
	}
	return out, nil
}

func (p *PlaylistController) addItem(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if _, apiErr := p.owned(id, user); apiErr != nil {
		return nil, apiErr
	}

	var req packets.AddPlaylistItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if req.Duration != nil && *req.Duration <= 0 {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "duration must be positive"}
	}

	item, err := p.playlists.InsertItem(id, req.ContentItemID, req.Duration)
	switch {
	case errors.Is(err, playlist.ErrNotFound):
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid content_item_id"}
	case errors.Is(err, playlist.ErrDuplicateItem):
		return nil, &api.Error{Code: http.StatusConflict, Message: "content item already in playlist"}
	case err != nil:
		log.Error().Err(err).Int("playlist_id", id).Msg("[playlist] add item: could not insert item")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not add item"}
	}

	go p.notifyPlaylistUpdated(id)
	return mapItem(item), nil
}

func (p *PlaylistController) removeItem(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if _, apiErr := p.owned(id, user); apiErr != nil {
		return nil, apiErr
	}

	itemID, _ := strconv.Atoi(ctx.Param("item_id"))
	err := p.playlists.RemoveItem(id, itemID)
	switch {
	case errors.Is(err, playlist.ErrNotFound):
		return nil, &api.Error{Code: http.StatusNotFound, Message: "item not found"}
	case err != nil:
		log.Error().Err(err).Int("playlist_id", id).Int("item_id", itemID).Msg("[playlist] remove item: could not remove item")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not remove item"}
	}

	go p.notifyPlaylistUpdated(id)
	return nil, nil
}

// reorderItems applies a complete new ordering in one shot. Partial or
// inconsistent submissions are rejected without touching the list.
func (p *PlaylistController) reorderItems(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	if _, apiErr := p.owned(id, user); apiErr != nil {
		return nil, apiErr
	}

	var req packets.ReorderPlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	ordering := make([]playlist.OrderEntry, len(req.Ordering))
	for i, e := range req.Ordering {
		ordering[i] = playlist.OrderEntry{ItemID: e.ID, Position: e.Order}
	}

	err := p.playlists.Reorder(id, ordering)
	switch {
	case errors.Is(err, playlist.ErrInvalidOrdering):
		return nil, &api.Error{Code: http.StatusUnprocessableEntity, Message: err.Error()}
	case errors.Is(err, playlist.ErrNotFound):
		return nil, &api.Error{Code: http.StatusNotFound, Message: "playlist not found"}
	case err != nil:
		log.Error().Err(err).Int("playlist_id", id).Msg("[playlist] reorder: could not reorder items")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not reorder items"}
	}

	go p.notifyPlaylistUpdated(id)
	return p.listItems(ctx, user)
}

func mapPlaylist(pl model.Playlist) packets.PlaylistResponse {
	items := make([]packets.PlaylistItemResponse, len(pl.Items))
	for i, it := range pl.Items {
		items[i] = mapItem(it)
	}
	return packets.PlaylistResponse{
		ID:          pl.ID,
		Name:        pl.Name,
		Description: pl.Description,
		Loop:        pl.Loop,
		Shuffle:     pl.Shuffle,
		CreatedAt:   pl.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   pl.UpdatedAt.Format(time.RFC3339),
		Items:       items,
	}
}

func mapItem(it model.PlaylistItem) packets.PlaylistItemResponse {
	resp := packets.PlaylistItemResponse{
		ID:               it.ID,
		ContentItemID:    it.ContentItemID,
		Position:         it.Position,
		DurationOverride: it.DurationOverride,
		Duration:         it.EffectiveDuration(),
	}
	if it.ContentItem != nil {
		ci := mapContentItem(*it.ContentItem)
		resp.ContentItem = &ci
	}
	return resp
}
