package handler

import (
	"net/http"

	"github.com/oetzilabs/ciftlikpdf/internal/store"
	"github.com/oetzilabs/ciftlikpdf/internal/util"

	"github.com/gin-gonic/gin"
)

// TemplateHandler serves receipt-template management.
type TemplateHandler struct {
	Templates *store.TemplateStore
}

func NewTemplateHandler(templates *store.TemplateStore) *TemplateHandler {
	return &TemplateHandler{Templates: templates}
}

// List handles GET /templates.
func (h *TemplateHandler) List(c *gin.Context) {
	tpls, err := h.Templates.All()
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"templates": tpls})
}

// Default handles GET /templates/default.
func (h *TemplateHandler) Default(c *gin.Context) {
	tpl, err := h.Templates.Default()
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"template": tpl})
}

type createTemplateReq struct {
	Name string `json:"name" binding:"required,max=128"`
}

// Create handles POST /templates.
func (h *TemplateHandler) Create(c *gin.Context) {
	var req createTemplateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	tpl, err := h.Templates.Create(req.Name)
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"template": tpl})
}

// UploadURL handles POST /templates/upload-url: a presigned PUT scoped to
// templates/{name}.dotx.
func (h *TemplateHandler) UploadURL(c *gin.Context) {
	var req createTemplateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	url, key, err := h.Templates.CreateUploadURL(c.Request.Context(), req.Name)
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"url": url, "key": key})
}

// SetDefault handles POST /templates/:id/set-default.
func (h *TemplateHandler) SetDefault(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tpl, err := h.Templates.SetAsDefault(id)
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"template": tpl})
}

// Remove handles DELETE /templates/:id.
func (h *TemplateHandler) Remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Templates.Remove(id); err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "template deleted"})
}

// Sync handles POST /templates/sync: backfills rows for storage objects
// uploaded before their record existed.
func (h *TemplateHandler) Sync(c *gin.Context) {
	created, err := h.Templates.SyncOld(c.Request.Context())
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"created": created})
}
