package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Dyslex1k/SceneSearch/internal/apperr"
	"github.com/Dyslex1k/SceneSearch/internal/domain"
	"github.com/Dyslex1k/SceneSearch/internal/http/response"
	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
	"github.com/Dyslex1k/SceneSearch/internal/requestdata"
	"github.com/Dyslex1k/SceneSearch/internal/search"
	"github.com/Dyslex1k/SceneSearch/internal/services"
)

type PrefabHandler struct {
	log   *logger.Logger
	write services.PrefabWriteService
	read  services.PrefabReadService
}

func NewPrefabHandler(log *logger.Logger, write services.PrefabWriteService, read services.PrefabReadService) *PrefabHandler {
	return &PrefabHandler{
		log:   log.With("handler", "PrefabHandler"),
		write: write,
		read:  read,
	}
}

// writeResponse annotates the receipt so clients can tell a clean write from
// one whose derived stores lag until reconciliation.
type writeResponse struct {
	*services.WriteReceipt
	Degraded bool `json:"degraded"`
}

func (ph *PrefabHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.Error(c, apperr.Unauthorized("missing caller identity"))
		return
	}

	var draft domain.PrefabDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, apperr.InvalidInput("invalid request body"))
		return
	}

	receipt, err := ph.write.Create(c.Request.Context(), rd.UserID, &draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, writeResponse{WriteReceipt: receipt, Degraded: receipt.Degraded()})
}

func (ph *PrefabHandler) Update(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.Error(c, apperr.Unauthorized("missing caller identity"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperr.InvalidInput("malformed prefab id %q", c.Param("id")))
		return
	}

	var patch domain.PrefabPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, apperr.InvalidInput("invalid request body"))
		return
	}

	receipt, err := ph.write.Update(c.Request.Context(), id, rd.UserID, &patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, writeResponse{WriteReceipt: receipt, Degraded: receipt.Degraded()})
}

func (ph *PrefabHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.Error(c, apperr.Unauthorized("missing caller identity"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperr.InvalidInput("malformed prefab id %q", c.Param("id")))
		return
	}

	receipt, err := ph.write.Delete(c.Request.Context(), id, rd.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, writeResponse{WriteReceipt: receipt, Degraded: receipt.Degraded()})
}

func (ph *PrefabHandler) Get(c *gin.Context) {
	p, err := ph.read.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

func (ph *PrefabHandler) List(c *gin.Context) {
	limit := intQuery(c, "limit", 0)
	offset := intQuery(c, "offset", 0)

	results, err := ph.read.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"prefabs": results})
}

func (ph *PrefabHandler) Search(c *gin.Context) {
	q := search.Query{
		Text:        c.Query("q"),
		UseCases:    c.QueryArray("use_case"),
		Categories:  c.QueryArray("category"),
		LicenceType: c.Query("licence_type"),
		Limit:       intQuery(c, "limit", 0),
		Offset:      intQuery(c, "offset", 0),
	}
	if raw, ok := c.GetQuery("is_free"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, apperr.InvalidInput("is_free must be a boolean"))
			return
		}
		q.IsFree = &v
	}

	res, err := ph.read.Search(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
