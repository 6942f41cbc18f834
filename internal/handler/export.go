package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/oetzilabs/ciftlikpdf/internal/store"
	"github.com/oetzilabs/ciftlikpdf/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler produces the dashboard's XLSX export of sponsors and their
// donations.
type ExportHandler struct {
	Sponsors *store.SponsorStore
}

func NewExportHandler(sponsors *store.SponsorStore) *ExportHandler {
	return &ExportHandler{Sponsors: sponsors}
}

// ExportXLSX handles GET /export/xlsx: one row per donation, live sponsors
// only.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	sponsors, err := h.Sponsors.AllWithoutDeleted()
	if err != nil {
		storeError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Donations"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Sponsor", "Address", "Year", "Amount", "Currency", "Receipt"}
	for i, hd := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, hd)
	}

	row := 2
	for _, sponsor := range sponsors {
		for _, d := range sponsor.Donations {
			receipt := "pending"
			if d.S3Key != nil && *d.S3Key != "" {
				receipt = "generated"
			}
			values := []interface{}{sponsor.Name, sponsor.Address, d.Year, d.Amount, d.Currency, receipt}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"donations_%s.xlsx\"",
		time.Now().Format("20060102")))

	buf, err := f.WriteToBuffer()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "build xlsx failed")
		return
	}
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
