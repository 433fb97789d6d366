package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/db"
	"github.com/christopherlanz-debug/dsV2/internal/http/api"
	"github.com/christopherlanz-debug/dsV2/internal/http/api/admin/packets"
	"github.com/christopherlanz-debug/dsV2/internal/model"
	"github.com/christopherlanz-debug/dsV2/internal/storage"
)

type ContentController struct {
	store   db.Store
	storage storage.Storage
}

func NewContentController(store db.Store, st storage.Storage) *ContentController {
	return &ContentController{store: store, storage: st}
}

// ContentModule mounts the content routes for api.MountGroup.
func ContentModule(store db.Store, st storage.Storage) api.Module {
	return api.ModuleFunc(func(g gin.IRoutes) {
		RegisterContentRoutes(g, store, st)
	})
}

func RegisterContentRoutes(r gin.IRoutes, store db.Store, st storage.Storage) {
	ctl := NewContentController(store, st)

	r.GET("/content", api.ResolveEndpointWithAuth(ctl.listContent))
	r.POST("/content", api.ResolveEndpointWithAuth(ctl.createContent))
	r.GET("/content/:id", api.ResolveEndpointWithAuth(ctl.getContent))
	r.DELETE("/content/:id", api.ResolveEndpointWithAuth(ctl.deleteContent))

	// rendered pages of a paginated document
	r.POST("/content/:id/pages", api.ResolveEndpointWithAuth(ctl.registerPage))
	r.GET("/content/:id/items", api.ResolveEndpointWithAuth(ctl.listItems))
}

// createContent saves the uploaded media and records it. Images and videos
// get their single content item immediately; document pages are registered
// one by one through registerPage.
func (cc *ContentController) createContent(ctx *gin.Context, user *model.User) (any, *api.Error) {
	var req packets.CreateContentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "file is required"}
	}

	url, err := cc.storage.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		log.Error().Err(err).Msg("[content] create: could not save upload")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not save file"}
	}

	var mimeType *string
	if mt := fileHeader.Header.Get("Content-Type"); mt != "" {
		mimeType = &mt
	}

	var pageCount *int
	if req.Type == model.ContentTypePDF {
		if raw := ctx.PostForm("page_count"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid page_count"}
			}
			pageCount = &n
		}
	}

	content, err := cc.store.CreateContent(req.Title, req.Type, url, mimeType, req.Duration, pageCount, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("[content] create: could not create content")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not create content"}
	}

	if req.Type != model.ContentTypePDF {
		if _, err := cc.store.CreateContentItem(content.ID, 1, url, mimeType, req.Duration); err != nil {
			log.Error().Err(err).Int("content_id", content.ID).Msg("[content] create: could not create content item")
			return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not create content item"}
		}
	}

	full, err := cc.store.GetContentByID(content.ID)
	if err != nil {
		return mapContent(content), nil
	}
	return mapContent(full), nil
}

// registerPage uploads one rendered page of a document and records it as a
// content item. The page inherits the document's duration unless overridden.
func (cc *ContentController) registerPage(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	content, err := cc.store.GetContentByID(id)
	if err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "content not found"}
	}
	if content.Type != model.ContentTypePDF {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "content is not paginated"}
	}

	var req packets.RegisterPageRequest
	if err := ctx.ShouldBind(&req); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "file is required"}
	}

	url, err := cc.storage.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		log.Error().Err(err).Msg("[content] page: could not save upload")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not save file"}
	}

	duration := content.Duration
	if req.Duration != nil {
		if *req.Duration <= 0 {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: "duration must be positive"}
		}
		duration = *req.Duration
	}

	var mimeType *string
	if mt := fileHeader.Header.Get("Content-Type"); mt != "" {
		mimeType = &mt
	}

	item, err := cc.store.CreateContentItem(id, req.ItemNumber, url, mimeType, duration)
	if err != nil {
		log.Error().Err(err).Int("content_id", id).Msg("[content] page: could not create content item")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not register page"}
	}

	return mapContentItem(item), nil
}

func (cc *ContentController) listContent(ctx *gin.Context, user *model.User) (any, *api.Error) {
	all, err := cc.store.ListContent()
	if err != nil {
		log.Error().Err(err).Msg("[content] list: could not list content")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list content"}
	}

	out := make([]packets.ContentResponse, 0, len(all))
	for _, c := range all {
		if c.CreatedBy != user.ID {
			continue
		}
		out = append(out, mapContent(c))
	}
	return out, nil
}

func (cc *ContentController) getContent(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	c, err := cc.store.GetContentByID(id)
	if err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "content not found"}
	}
	if c.CreatedBy != user.ID {
		return nil, &api.Error{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return mapContent(c), nil
}

func (cc *ContentController) deleteContent(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	c, err := cc.store.GetContentByID(id)
	if err != nil || c.CreatedBy != user.ID {
		return nil, &api.Error{Code: http.StatusForbidden, Message: "forbidden"}
	}
	if err := cc.store.DeleteContent(id); err != nil {
		log.Error().Err(err).Int("content_id", id).Msg("[content] delete: could not delete content")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not delete content"}
	}
	return nil, nil
}

func (cc *ContentController) listItems(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, _ := strconv.Atoi(ctx.Param("id"))
	c, err := cc.store.GetContentByID(id)
	if err != nil || c.CreatedBy != user.ID {
		return nil, &api.Error{Code: http.StatusForbidden, Message: "forbidden"}
	}

	items, err := cc.store.ListContentItems(id)
	if err != nil {
		log.Error().Err(err).Int("content_id", id).Msg("[content] items: could not list content items")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list content items"}
	}

	out := make([]packets.ContentItemResponse, len(items))
	for i, it := range items {
		out[i] = mapContentItem(it)
	}
	return out, nil
}

func mapContent(c model.Content) packets.ContentResponse {
	items := make([]packets.ContentItemResponse, len(c.Items))
	for i, it := range c.Items {
		items[i] = mapContentItem(it)
	}
	return packets.ContentResponse{
		ID:        c.ID,
		Title:     c.Title,
		Type:      c.Type,
		URL:       c.URL,
		Duration:  c.Duration,
		PageCount: c.PageCount,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		Items:     items,
	}
}

func mapContentItem(it model.ContentItem) packets.ContentItemResponse {
	return packets.ContentItemResponse{
		ID:         it.ID,
		ItemNumber: it.ItemNumber,
		URL:        it.URL,
		Duration:   it.Duration,
	}
}
