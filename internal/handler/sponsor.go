package handler

import (
	"net/http"

	"github.com/oetzilabs/ciftlikpdf/internal/middleware"
	"github.com/oetzilabs/ciftlikpdf/internal/store"
	"github.com/oetzilabs/ciftlikpdf/internal/util"

	"github.com/gin-gonic/gin"
)

// SponsorHandler serves sponsor CRUD and the donate sub-routes.
type SponsorHandler struct {
	Sponsors      *store.SponsorStore
	DonationStore *store.DonationStore
}

func NewSponsorHandler(sponsors *store.SponsorStore, donations *store.DonationStore) *SponsorHandler {
	return &SponsorHandler{Sponsors: sponsors, DonationStore: donations}
}

func adminID(c *gin.Context) *uint {
	if user, ok := middleware.CurrentUser(c); ok {
		id := user.ID
		return &id
	}
	return nil
}

type donationReq struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Currency string `json:"currency" binding:"required,oneof=CHF EUR"`
	Year     int    `json:"year" binding:"required"`
}

type createSponsorReq struct {
	Name    string `json:"name" binding:"required,max=255"`
	Address string `json:"address" binding:"required,max=512"`
}

type createSponsorWithDonationReq struct {
	Name     string      `json:"name" binding:"required,max=255"`
	Address  string      `json:"address" binding:"required,max=512"`
	Donation donationReq `json:"donation" binding:"required"`
}

type updateSponsorReq struct {
	Name    *string `json:"name" binding:"omitempty,max=255"`
	Address *string `json:"address" binding:"omitempty,max=512"`
}

type updateAmountReq struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// Create handles POST /sponsors.
func (h *SponsorHandler) Create(c *gin.Context) {
	var req createSponsorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	sponsor, err := h.Sponsors.Create(req.Name, req.Address)
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"sponsor": sponsor})
}

// CreateWithDonation handles POST /sponsors/with-donation.
func (h *SponsorHandler) CreateWithDonation(c *gin.Context) {
	var req createSponsorWithDonationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	sponsor, err := h.Sponsors.CreateWithDonation(req.Name, req.Address, store.DonationFields{
		Amount:   req.Donation.Amount,
		Currency: req.Donation.Currency,
		Year:     req.Donation.Year,
		AdminID:  adminID(c),
	})
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"sponsor": sponsor})
}

// Donate handles POST /sponsor/:id/donate.
func (h *SponsorHandler) Donate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req donationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	donation, err := h.Sponsors.Donate(id, store.DonationFields{
		Amount:   req.Amount,
		Currency: req.Currency,
		Year:     req.Year,
		AdminID:  adminID(c),
	})
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"donation": donation})
}

// UpdateDonation handles PUT /sponsor/:id/donate/:did.
func (h *SponsorHandler) UpdateDonation(c *gin.Context) {
	sponsorID, ok := pathID(c, "id")
	if !ok {
		return
	}
	donationID, ok := pathID(c, "did")
	if !ok {
		return
	}
	var req donationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	existing, err := h.DonationStore.FindByID(donationID)
	if err != nil || existing.SponsorID != sponsorID {
		storeError(c, store.ErrNotFound)
		return
	}

	donation, err := h.DonationStore.Update(donationID, store.DonationFields{
		Amount:   req.Amount,
		Currency: req.Currency,
		Year:     req.Year,
		AdminID:  adminID(c),
	})
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"donation": donation})
}

// UpdateDonationAmount handles PATCH /sponsor/:id/donate/:did/amount. Unlike
// the full update it leaves currency and year alone; the cached receipt key
// is still cleared since the receipt embeds the amount.
func (h *SponsorHandler) UpdateDonationAmount(c *gin.Context) {
	sponsorID, ok := pathID(c, "id")
	if !ok {
		return
	}
	donationID, ok := pathID(c, "did")
	if !ok {
		return
	}
	var req updateAmountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	existing, err := h.DonationStore.FindByID(donationID)
	if err != nil || existing.SponsorID != sponsorID {
		storeError(c, store.ErrNotFound)
		return
	}

	donation, err := h.DonationStore.UpdateAmount(donationID, req.Amount, adminID(c))
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"donation": donation})
}

// RemoveDonation handles DELETE /sponsor/:id/donate/:did.
func (h *SponsorHandler) RemoveDonation(c *gin.Context) {
	sponsorID, ok := pathID(c, "id")
	if !ok {
		return
	}
	donationID, ok := pathID(c, "did")
	if !ok {
		return
	}

	existing, err := h.DonationStore.FindByID(donationID)
	if err != nil || existing.SponsorID != sponsorID {
		storeError(c, store.ErrNotFound)
		return
	}

	if err := h.DonationStore.MarkAsDeleted(donationID, adminID(c)); err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "donation deleted"})
}

// Update handles PUT /sponsors/:id.
func (h *SponsorHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateSponsorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	sponsor, err := h.Sponsors.Update(id, req.Name, req.Address)
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"sponsor": sponsor})
}

// Remove handles DELETE /sponsors/:id.
func (h *SponsorHandler) Remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Sponsors.Remove(id); err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "sponsor deleted"})
}

// Get handles GET /sponsors/:id.
func (h *SponsorHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sponsor, err := h.Sponsors.FindByID(id)
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"sponsor": sponsor})
}

// GetByName handles GET /sponsors/by-name?name=. Exact match, unlike the
// substring search.
func (h *SponsorHandler) GetByName(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "missing query parameter name")
		return
	}
	sponsor, err := h.Sponsors.FindByName(name)
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"sponsor": sponsor})
}

// Donations handles GET /sponsor/:id/donations.
func (h *SponsorHandler) Donations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.Sponsors.FindByID(id); err != nil {
		storeError(c, err)
		return
	}
	donations, err := h.DonationStore.FindBySponsorID(id)
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"donations": donations})
}

// List handles GET /sponsors (all, including soft-deleted).
func (h *SponsorHandler) List(c *gin.Context) {
	sponsors, err := h.Sponsors.All()
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"sponsors": sponsors})
}

// ListWithoutDeleted handles GET /sponsors/without-deleted.
func (h *SponsorHandler) ListWithoutDeleted(c *gin.Context) {
	sponsors, err := h.Sponsors.AllWithoutDeleted()
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"sponsors": sponsors})
}

// Count handles GET /sponsors/count.
func (h *SponsorHandler) Count(c *gin.Context) {
	count, err := h.Sponsors.CountAll()
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"count": count})
}

// Search handles GET /search?q=.
func (h *SponsorHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "missing query parameter q")
		return
	}
	sponsors, err := h.Sponsors.Search(q)
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"sponsors": sponsors})
}
