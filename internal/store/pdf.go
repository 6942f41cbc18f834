package store

import (
	"context"
	"fmt"
	"time"

	"github.com/oetzilabs/ciftlikpdf/internal/models"
	"github.com/oetzilabs/ciftlikpdf/internal/pdfconv"
	"github.com/oetzilabs/ciftlikpdf/internal/storage"
)

// downloadURLTTL bounds how long a presigned receipt download stays valid.
const downloadURLTTL = 1 * time.Hour

// ReceiptKey builds the storage key of a donation receipt. This layout is
// the idempotency key of PDF generation and must not change.
func ReceiptKey(sponsorID, donationID uint) string {
	return fmt.Sprintf("sponsor-pdf/%d/%d.pdf", sponsorID, donationID)
}

// PDFService drives the receipt lifecycle: generate-once, cache by storage
// key, invalidate on sponsor edits (the sponsor store's job), delete on
// request.
type PDFService struct {
	Sponsors  *SponsorStore
	Donations *DonationStore
	Templates *TemplateStore
	Objects   storage.ObjectStore
	Converter pdfconv.Converter
}

func NewPDFService(sponsors *SponsorStore, donations *DonationStore, templates *TemplateStore, objects storage.ObjectStore, converter pdfconv.Converter) *PDFService {
	return &PDFService{
		Sponsors:  sponsors,
		Donations: donations,
		Templates: templates,
		Objects:   objects,
		Converter: converter,
	}
}

// CreatePDFFromTemplate returns a presigned download URL for the donation's
// receipt, generating and uploading the PDF first unless the donation
// already carries a storage key (cache hit: no template download, no
// converter call). Failures before the key is persisted leave the donation
// unchanged, so a retry regenerates from scratch.
func (p *PDFService) CreatePDFFromTemplate(ctx context.Context, sponsorID, donationID uint) (string, error) {
	donation, err := p.Donations.FindByID(donationID)
	if err != nil {
		return "", err
	}
	if donation.SponsorID != sponsorID {
		return "", ErrNotFound
	}
	sponsor, err := p.Sponsors.FindByID(sponsorID)
	if err != nil {
		return "", err
	}

	if donation.S3Key != nil && *donation.S3Key != "" {
		url, err := p.Objects.PresignGet(ctx, *donation.S3Key, downloadURLTTL)
		if err != nil {
			return "", fmt.Errorf("presign receipt: %w", err)
		}
		return url, nil
	}

	tpl, err := p.Templates.Default()
	if err != nil {
		return "", err
	}
	tplBytes, err := p.Templates.Download(ctx, tpl)
	if err != nil {
		return "", err
	}

	pdf, err := p.Converter.Convert(ctx, pdfconv.ConvertRequest{
		TemplateFile: tplBytes,
		SponsorName:  sponsor.Name,
		Address:      sponsor.Address,
		Amount:       donation.Amount,
		Currency:     donation.Currency,
		Year:         donation.Year,
		Date:         time.Now().Format("02.01.2006"),
		SponsorID:    sponsorID,
		DonationID:   donationID,
	})
	if err != nil {
		return "", err
	}

	key := ReceiptKey(sponsorID, donationID)
	if err := p.Objects.Upload(ctx, key, pdf, "application/pdf"); err != nil {
		return "", fmt.Errorf("upload receipt: %w", err)
	}
	if err := p.Donations.SetS3Key(donationID, key); err != nil {
		return "", err
	}

	url, err := p.Objects.PresignGet(ctx, key, downloadURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign receipt: %w", err)
	}
	return url, nil
}

// DeletePDF removes a donation's receipt object and clears its key. The
// donation row itself stays.
func (p *PDFService) DeletePDF(ctx context.Context, donationID uint) error {
	donation, err := p.Donations.FindByID(donationID)
	if err != nil {
		return err
	}
	if donation.S3Key == nil || *donation.S3Key == "" {
		return nil
	}
	if err := p.Objects.Delete(ctx, *donation.S3Key); err != nil {
		return fmt.Errorf("delete receipt object: %w", err)
	}
	return p.Donations.ClearS3Key(donationID)
}

// DeletePDFByKey removes a receipt object directly by its storage key,
// clearing the key on whichever donation referenced it.
func (p *PDFService) DeletePDFByKey(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidInput)
	}
	if err := p.Objects.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete receipt object: %w", err)
	}
	err := p.Donations.DB.Model(&models.Donation{}).
		Where("s3_key = ?", key).
		Update("s3_key", nil).Error
	if err != nil {
		return fmt.Errorf("clear orphaned key: %w", err)
	}
	return nil
}
