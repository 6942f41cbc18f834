package store

import (
	"errors"
	"testing"
)

func TestFindBySponsorID(t *testing.T) {
	db := newTestDB(t)
	sponsors := NewSponsorStore(db)
	donations := NewDonationStore(db)

	sponsor, _ := sponsors.CreateWithDonation("Acme", "Street 1", DonationFields{
		Amount: 100, Currency: "CHF", Year: 2024,
	})
	earlier, _ := sponsors.Donate(sponsor.ID, DonationFields{Amount: 50, Currency: "CHF", Year: 2022})
	other, _ := sponsors.Create("Widget GmbH", "Street 2")
	_, _ = sponsors.Donate(other.ID, DonationFields{Amount: 900, Currency: "EUR", Year: 2024})

	got, err := donations.FindBySponsorID(sponsor.ID)
	if err != nil {
		t.Fatalf("find by sponsor: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 donations, got %d", len(got))
	}
	// ordered by year, and never another sponsor's rows
	if got[0].Year != 2022 || got[1].Year != 2024 {
		t.Errorf("years = %d, %d; want 2022, 2024", got[0].Year, got[1].Year)
	}
	for _, d := range got {
		if d.SponsorID != sponsor.ID {
			t.Errorf("donation %d belongs to sponsor %d", d.ID, d.SponsorID)
		}
	}

	// soft-deleted rows drop out
	if err := donations.MarkAsDeleted(earlier.ID, nil); err != nil {
		t.Fatalf("mark deleted: %v", err)
	}
	got, _ = donations.FindBySponsorID(sponsor.ID)
	if len(got) != 1 || got[0].Year != 2024 {
		t.Errorf("after delete: %+v", got)
	}
}

func TestUpdateAmountClearsReceiptKey(t *testing.T) {
	db := newTestDB(t)
	sponsors := NewSponsorStore(db)
	donations := NewDonationStore(db)

	sponsor, _ := sponsors.CreateWithDonation("Acme", "Street 1", DonationFields{
		Amount: 100, Currency: "CHF", Year: 2024,
	})
	id := sponsor.Donations[0].ID
	if err := donations.SetS3Key(id, ReceiptKey(sponsor.ID, id)); err != nil {
		t.Fatalf("set key: %v", err)
	}

	updated, err := donations.UpdateAmount(id, 250, nil)
	if err != nil {
		t.Fatalf("update amount: %v", err)
	}
	if updated.Amount != 250 {
		t.Errorf("amount = %d, want 250", updated.Amount)
	}
	if updated.Currency != "CHF" || updated.Year != 2024 {
		t.Errorf("currency/year changed: %+v", updated)
	}
	if updated.S3Key != nil {
		t.Error("receipt key should be cleared when the amount changes")
	}
}

func TestUpdateAmountValidation(t *testing.T) {
	db := newTestDB(t)
	sponsors := NewSponsorStore(db)
	donations := NewDonationStore(db)

	sponsor, _ := sponsors.CreateWithDonation("Acme", "Street 1", DonationFields{
		Amount: 100, Currency: "CHF", Year: 2024,
	})

	if _, err := donations.UpdateAmount(sponsor.Donations[0].ID, 0, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero amount: got %v, want ErrInvalidInput", err)
	}
	if _, err := donations.UpdateAmount(99999, 100, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown donation: got %v, want ErrNotFound", err)
	}
}
