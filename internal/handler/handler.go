package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/oetzilabs/ciftlikpdf/internal/store"
	"github.com/oetzilabs/ciftlikpdf/internal/util"

	"github.com/gin-gonic/gin"
)

// storeError maps entity-layer sentinels onto the JSON error envelope.
func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "not found")
	case errors.Is(err, store.ErrDuplicateYear):
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	case errors.Is(err, store.ErrNoDefaultTemplate):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case errors.Is(err, store.ErrInvalidInput):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, err.Error())
	}
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
