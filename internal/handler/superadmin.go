package handler

import (
	"net/http"

	"github.com/oetzilabs/ciftlikpdf/internal/middleware"
	"github.com/oetzilabs/ciftlikpdf/internal/store"
	"github.com/oetzilabs/ciftlikpdf/internal/util"

	"github.com/gin-gonic/gin"
)

// SuperadminHandler serves user management and admin-request resolution.
type SuperadminHandler struct {
	Users    *store.UserStore
	Requests *store.AdminRequestStore
}

func NewSuperadminHandler(users *store.UserStore, requests *store.AdminRequestStore) *SuperadminHandler {
	return &SuperadminHandler{Users: users, Requests: requests}
}

// ListUsers handles GET /superadmin/users.
func (h *SuperadminHandler) ListUsers(c *gin.Context) {
	users, err := h.Users.All()
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"users": users})
}

type setRoleReq struct {
	Role string `json:"role" binding:"required,oneof=viewer admin superadmin"`
}

// SetRole handles PUT /superadmin/users/:id/role. A superadmin cannot
// demote themself; that would leave the system without one by accident.
func (h *SuperadminHandler) SetRole(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req setRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	if actor, ok := middleware.CurrentUser(c); ok && actor.ID == id {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cannot change own role")
		return
	}

	user, err := h.Users.SetRole(id, req.Role)
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"user": user})
}

// CreateAdminRequest handles POST /admin-requests: any signed-in viewer may
// ask for the admin role.
func (h *SuperadminHandler) CreateAdminRequest(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}
	req, err := h.Requests.Create(user.ID)
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"request": req})
}

// ListAdminRequests handles GET /admin-requests.
func (h *SuperadminHandler) ListAdminRequests(c *gin.Context) {
	reqs, err := h.Requests.All()
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"requests": reqs})
}

type resolveAdminRequestReq struct {
	Status string `json:"status" binding:"required,oneof=approved denied"`
}

// ResolveAdminRequest handles PUT /superadmin/admin-requests/:id.
func (h *SuperadminHandler) ResolveAdminRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req resolveAdminRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	resolved, err := h.Requests.SetStatus(id, req.Status)
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"request": resolved})
}
