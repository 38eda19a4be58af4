package handlers

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/agencycrm-backend/internal/http/response"
	"github.com/yungbote/agencycrm-backend/internal/services"
)

// CollectionHandler exposes one scoped collection as a REST resource.
type CollectionHandler[T any] struct {
	svc services.Collection[T]
}

func NewCollectionHandler[T any](svc services.Collection[T]) *CollectionHandler[T] {
	return &CollectionHandler[T]{svc: svc}
}

func (h *CollectionHandler[T]) Name() string { return h.svc.Name() }

// GET /api/<collection>/
// Query parameters are passed through as filters; the first value of each wins.
func (h *CollectionHandler[T]) List(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	filter := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			filter[key] = values[0]
		}
	}
	rows, err := h.svc.List(c.Request.Context(), caller, filter)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/<collection>/:id/
func (h *CollectionHandler[T]) Get(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, err := h.svc.Get(c.Request.Context(), caller, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, row)
}

// POST /api/<collection>/
func (h *CollectionHandler[T]) Create(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	row := new(T)
	if err := c.ShouldBindJSON(row); err != nil {
		badBody(c, err)
		return
	}
	created, err := h.svc.Create(c.Request.Context(), caller, row)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, created)
}

// PUT|PATCH /api/<collection>/:id/
// The body is merged over the stored row, so omitted fields keep their value.
func (h *CollectionHandler[T]) Update(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badBody(c, err)
		return
	}
	if !json.Valid(body) {
		badBody(c, errors.New("malformed JSON"))
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), caller, id, func(row *T) error {
		return json.Unmarshal(body, row)
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, updated)
}

// DELETE /api/<collection>/:id/
func (h *CollectionHandler[T]) Delete(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), caller, id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}

// RegisterCollection mounts the five CRUD routes of h under its collection name.
func RegisterCollection[T any](g *gin.RouterGroup, h *CollectionHandler[T]) {
	if h == nil {
		return
	}
	base := "/" + h.Name() + "/"
	g.GET(base, h.List)
	g.POST(base, h.Create)
	g.GET(base+":id/", h.Get)
	g.PUT(base+":id/", h.Update)
	g.PATCH(base+":id/", h.Update)
	g.DELETE(base+":id/", h.Delete)
}
