package handler

import (
	"net/http"

	"github.com/oetzilabs/ciftlikpdf/internal/store"
	"github.com/oetzilabs/ciftlikpdf/internal/util"

	"github.com/gin-gonic/gin"
)

// PDFHandler serves receipt generation, listing and removal.
type PDFHandler struct {
	PDFs      *store.PDFService
	Donations *store.DonationStore
}

func NewPDFHandler(pdfs *store.PDFService, donations *store.DonationStore) *PDFHandler {
	return &PDFHandler{PDFs: pdfs, Donations: donations}
}

// All handles GET /pdfs/all: every live donation with a generated receipt.
func (h *PDFHandler) All(c *gin.Context) {
	donations, err := h.Donations.All()
	if err != nil {
		storeError(c, err)
		return
	}
	withPDF := donations[:0]
	for _, d := range donations {
		if d.S3Key != nil && *d.S3Key != "" {
			withPDF = append(withPDF, d)
		}
	}
	util.Success(c, util.Response{"donations": withPDF})
}

// DownloadURL handles POST /pdfs/download-url/:id. It generates the receipt
// on first request and serves the cached object afterwards.
func (h *PDFHandler) DownloadURL(c *gin.Context) {
	donationID, ok := pathID(c, "id")
	if !ok {
		return
	}
	donation, err := h.Donations.FindByID(donationID)
	if err != nil {
		storeError(c, err)
		return
	}

	url, err := h.PDFs.CreatePDFFromTemplate(c.Request.Context(), donation.SponsorID, donationID)
	if err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"url": url, "s3_key": store.ReceiptKey(donation.SponsorID, donationID)})
}

// Delete handles DELETE /pdfs/:id: removes the receipt object and clears
// the donation's key. The donation row stays.
func (h *PDFHandler) Delete(c *gin.Context) {
	donationID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.PDFs.DeletePDF(c.Request.Context(), donationID); err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "pdf deleted"})
}

type deleteByKeyReq struct {
	Key string `json:"key" binding:"required"`
}

// DeleteByKey handles DELETE /pdfs/by-key.
func (h *PDFHandler) DeleteByKey(c *gin.Context) {
	var req deleteByKeyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := h.PDFs.DeletePDFByKey(c.Request.Context(), req.Key); err != nil {
		storeError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "pdf deleted"})
}
