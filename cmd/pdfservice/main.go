// pdfservice is the standalone DOCX→PDF converter. It fills the template's
// placeholders with the receipt values and shells out to LibreOffice for the
// conversion. The service keeps no state: the API server owns upload, key
// persistence and presigning.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type convertReq struct {
	TemplateFile string `json:"templateFile" binding:"required"`
	SponsorName  string `json:"user" binding:"required"`
	Address      string `json:"addres" binding:"required"`
	Amount       int64  `json:"amount" binding:"required,gt=0"`
	Currency     string `json:"currency" binding:"required,oneof=CHF EUR"`
	Year         int    `json:"year" binding:"required"`
	Date         string `json:"date" binding:"required"`
	SponsorID    uint   `json:"sid" binding:"required"`
	DonationID   uint   `json:"did" binding:"required"`
}

func main() {
	addr := os.Getenv("PDFSERVICE_ADDR")
	if addr == "" {
		addr = ":8090"
	}
	sofficeBin := os.Getenv("SOFFICE_BIN")
	if sofficeBin == "" {
		sofficeBin = "soffice"
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/", func(c *gin.Context) {
		var req convertReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		template, err := base64.StdEncoding.DecodeString(req.TemplateFile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "templateFile is not valid base64"})
			return
		}

		filled, err := FillTemplate(template, map[string]string{
			"user":     req.SponsorName,
			"addres":   req.Address,
			"amount":   strconv.FormatInt(req.Amount, 10),
			"currency": req.Currency,
			"year":     strconv.Itoa(req.Year),
			"date":     req.Date,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("fill template: %v", err)})
			return
		}

		pdf, err := convertToPDF(c.Request.Context(), sofficeBin, filled)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("convert: %v", err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"pdf": base64.StdEncoding.EncodeToString(pdf)})
	})

	log.Printf("pdfservice listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run pdfservice: %v", err)
	}
}

// convertToPDF writes the filled DOCX to a temp dir, runs the converter
// binary and reads back the resulting PDF. The temp dir round-trip is
// required because LibreOffice only converts files on disk.
func convertToPDF(ctx context.Context, sofficeBin string, docx []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "pdfservice-*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	name := uuid.NewString()
	docxPath := filepath.Join(dir, name+".docx")
	if err := os.WriteFile(docxPath, docx, 0o600); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}

	cmd := exec.CommandContext(ctx, sofficeBin, "--headless", "--convert-to", "pdf", "--outdir", dir, docxPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("soffice: %w: %s", err, out)
	}

	pdf, err := os.ReadFile(filepath.Join(dir, name+".pdf"))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return pdf, nil
}
