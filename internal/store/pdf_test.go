package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newPDFFixture(t *testing.T) (*PDFService, *SponsorStore, *DonationStore, *TemplateStore, *fakeObjects, *fakeConverter) {
	t.Helper()
	db := newTestDB(t)
	objects := newFakeObjects()
	converter := &fakeConverter{}
	sponsors := NewSponsorStore(db)
	donations := NewDonationStore(db)
	templates := NewTemplateStore(db, objects)
	pdfs := NewPDFService(sponsors, donations, templates, objects, converter)
	return pdfs, sponsors, donations, templates, objects, converter
}

func setupDefaultTemplate(t *testing.T, templates *TemplateStore, objects *fakeObjects) {
	t.Helper()
	tpl, err := templates.Create("receipt")
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	objects.objects[tpl.Key] = []byte("docx-bytes")
	if _, err := templates.SetAsDefault(tpl.ID); err != nil {
		t.Fatalf("set default: %v", err)
	}
}

func TestCreatePDFFromTemplate(t *testing.T) {
	pdfs, sponsors, donations, templates, objects, converter := newPDFFixture(t)
	setupDefaultTemplate(t, templates, objects)

	sponsor, err := sponsors.CreateWithDonation("Acme", "Street 1", DonationFields{
		Amount: 500, Currency: "CHF", Year: 2024,
	})
	if err != nil {
		t.Fatalf("setup sponsor: %v", err)
	}
	donationID := sponsor.Donations[0].ID

	url, err := pdfs.CreatePDFFromTemplate(context.Background(), sponsor.ID, donationID)
	if err != nil {
		t.Fatalf("create pdf: %v", err)
	}
	if url == "" {
		t.Fatal("expected a presigned url")
	}

	wantKey := ReceiptKey(sponsor.ID, donationID)
	if !strings.Contains(url, wantKey) {
		t.Errorf("url %q should reference key %q", url, wantKey)
	}
	d, _ := donations.FindByID(donationID)
	if d.S3Key == nil || *d.S3Key != wantKey {
		t.Errorf("donation key = %v, expected %q", d.S3Key, wantKey)
	}
	if converter.calls != 1 {
		t.Errorf("expected 1 conversion, got %d", converter.calls)
	}
	if _, ok := objects.objects[wantKey]; !ok {
		t.Error("receipt object should have been uploaded")
	}
}

func TestCreatePDFIdempotent(t *testing.T) {
	pdfs, sponsors, _, templates, objects, converter := newPDFFixture(t)
	setupDefaultTemplate(t, templates, objects)

	sponsor, _ := sponsors.CreateWithDonation("Acme", "Street 1", DonationFields{
		Amount: 500, Currency: "CHF", Year: 2024,
	})
	donationID := sponsor.Donations[0].ID

	first, err := pdfs.CreatePDFFromTemplate(context.Background(), sponsor.ID, donationID)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	downloadsAfterFirst := objects.downloads
	conversionsAfterFirst := converter.calls

	second, err := pdfs.CreatePDFFromTemplate(context.Background(), sponsor.ID, donationID)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if first != second {
		t.Errorf("both calls should return the same url: %q vs %q", first, second)
	}
	if objects.downloads != downloadsAfterFirst {
		t.Error("cache hit should not download the template again")
	}
	if converter.calls != conversionsAfterFirst {
		t.Error("cache hit should not call the converter again")
	}
}

func TestCreatePDFRegeneratesAfterSponsorEdit(t *testing.T) {
	pdfs, sponsors, _, templates, objects, converter := newPDFFixture(t)
	setupDefaultTemplate(t, templates, objects)

	sponsor, _ := sponsors.CreateWithDonation("Acme", "Street 1", DonationFields{
		Amount: 500, Currency: "CHF", Year: 2024,
	})
	donationID := sponsor.Donations[0].ID

	if _, err := pdfs.CreatePDFFromTemplate(context.Background(), sponsor.ID, donationID); err != nil {
		t.Fatalf("first generation: %v", err)
	}

	newName := "Acme AG"
	if _, err := sponsors.Update(sponsor.ID, &newName, nil); err != nil {
		t.Fatalf("rename sponsor: %v", err)
	}

	if _, err := pdfs.CreatePDFFromTemplate(context.Background(), sponsor.ID, donationID); err != nil {
		t.Fatalf("regeneration: %v", err)
	}
	if converter.calls != 2 {
		t.Errorf("rename should force regeneration; conversions = %d", converter.calls)
	}
}

func TestCreatePDFNoDefaultTemplate(t *testing.T) {
	pdfs, sponsors, _, _, _, _ := newPDFFixture(t)

	sponsor, _ := sponsors.CreateWithDonation("Acme", "Street 1", DonationFields{
		Amount: 500, Currency: "CHF", Year: 2024,
	})

	_, err := pdfs.CreatePDFFromTemplate(context.Background(), sponsor.ID, sponsor.Donations[0].ID)
	if !errors.Is(err, ErrNoDefaultTemplate) {
		t.Errorf("expected ErrNoDefaultTemplate, got %v", err)
	}
}

func TestCreatePDFConverterFailureIsRetrySafe(t *testing.T) {
	pdfs, sponsors, donations, templates, objects, converter := newPDFFixture(t)
	setupDefaultTemplate(t, templates, objects)

	sponsor, _ := sponsors.CreateWithDonation("Acme", "Street 1", DonationFields{
		Amount: 500, Currency: "CHF", Year: 2024,
	})
	donationID := sponsor.Donations[0].ID

	converter.fail = true
	if _, err := pdfs.CreatePDFFromTemplate(context.Background(), sponsor.ID, donationID); err == nil {
		t.Fatal("expected converter error")
	}

	// the failure must leave the key unset so a retry regenerates
	d, _ := donations.FindByID(donationID)
	if d.S3Key != nil {
		t.Fatal("failed generation must not persist a key")
	}

	converter.fail = false
	if _, err := pdfs.CreatePDFFromTemplate(context.Background(), sponsor.ID, donationID); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
}

func TestCreatePDFWrongSponsor(t *testing.T) {
	pdfs, sponsors, _, templates, objects, _ := newPDFFixture(t)
	setupDefaultTemplate(t, templates, objects)

	a, _ := sponsors.CreateWithDonation("Acme", "Street 1", DonationFields{
		Amount: 500, Currency: "CHF", Year: 2024,
	})
	b, _ := sponsors.Create("Beta", "Street 2")

	_, err := pdfs.CreatePDFFromTemplate(context.Background(), b.ID, a.Donations[0].ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("mismatched sponsor/donation should be ErrNotFound, got %v", err)
	}
}

func TestDeletePDF(t *testing.T) {
	pdfs, sponsors, donations, templates, objects, _ := newPDFFixture(t)
	setupDefaultTemplate(t, templates, objects)

	sponsor, _ := sponsors.CreateWithDonation("Acme", "Street 1", DonationFields{
		Amount: 500, Currency: "CHF", Year: 2024,
	})
	donationID := sponsor.Donations[0].ID

	if _, err := pdfs.CreatePDFFromTemplate(context.Background(), sponsor.ID, donationID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	key := ReceiptKey(sponsor.ID, donationID)

	if err := pdfs.DeletePDF(context.Background(), donationID); err != nil {
		t.Fatalf("delete pdf: %v", err)
	}
	if _, ok := objects.objects[key]; ok {
		t.Error("receipt object should be gone")
	}
	d, err := donations.FindByID(donationID)
	if err != nil {
		t.Fatalf("donation row should survive pdf deletion: %v", err)
	}
	if d.S3Key != nil {
		t.Error("key should be cleared")
	}

	// deleting again is a no-op
	if err := pdfs.DeletePDF(context.Background(), donationID); err != nil {
		t.Errorf("second delete should be a no-op: %v", err)
	}
}

func TestDeletePDFByKey(t *testing.T) {
	pdfs, sponsors, donations, templates, objects, _ := newPDFFixture(t)
	setupDefaultTemplate(t, templates, objects)

	sponsor, _ := sponsors.CreateWithDonation("Acme", "Street 1", DonationFields{
		Amount: 500, Currency: "CHF", Year: 2024,
	})
	donationID := sponsor.Donations[0].ID
	_, _ = pdfs.CreatePDFFromTemplate(context.Background(), sponsor.ID, donationID)
	key := ReceiptKey(sponsor.ID, donationID)

	if err := pdfs.DeletePDFByKey(context.Background(), key); err != nil {
		t.Fatalf("delete by key: %v", err)
	}
	d, _ := donations.FindByID(donationID)
	if d.S3Key != nil {
		t.Error("referencing donation should have its key cleared")
	}

	if err := pdfs.DeletePDFByKey(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty key should be invalid, got %v", err)
	}
}
