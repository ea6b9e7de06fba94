package jobs

import (
	"errors"
	"testing"
	"time"

	"github.com/dardanh/fieldhub/internal/domain/job"
)

func TestDecodePayload_RentalConfirmation(t *testing.T) {
	payload := RentalConfirmationPayload{
		RentalID:     "rental-123",
		SportFieldID: "field-456",
		TerrainName:  "Arena One",
		Email:        "jane@example.com",
		StartDate:    time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC),
		RequestedAt:  time.Now().UTC(),
	}

	raw, err := payload.JSON()
	if err != nil {
		t.Fatalf("JSON error: %v", err)
	}

	j := job.New(job.CreateRequest{
		Type:    TypeRentalConfirmation,
		Payload: raw,
	})

	decoded, err := DecodePayload(j)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p, ok := decoded.(RentalConfirmationPayload)
	if !ok {
		t.Fatalf("expected RentalConfirmationPayload, got %T", decoded)
	}

	if p.RentalID != payload.RentalID {
		t.Fatalf("expected rentalId %s, got %s", payload.RentalID, p.RentalID)
	}

	if !p.StartDate.Equal(payload.StartDate) {
		t.Fatalf("expected startDate %v, got %v", payload.StartDate, p.StartDate)
	}
}

func TestDecodePayload_PaymentReceipt(t *testing.T) {
	payload := PaymentReceiptPayload{
		UserID:      "user-1",
		Email:       "jane@example.com",
		Amount:      360,
		RequestedAt: time.Now().UTC(),
	}

	raw, err := payload.JSON()
	if err != nil {
		t.Fatalf("JSON error: %v", err)
	}

	j := job.New(job.CreateRequest{
		Type:    TypePaymentReceipt,
		Payload: raw,
	})

	decoded, err := DecodePayload(j)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p, ok := decoded.(PaymentReceiptPayload)
	if !ok {
		t.Fatalf("expected PaymentReceiptPayload, got %T", decoded)
	}

	if p.Amount != 360 {
		t.Fatalf("expected amount 360, got %d", p.Amount)
	}
}

func TestDecodePayload_UnknownType(t *testing.T) {
	j := job.New(job.CreateRequest{
		Type:    "mystery.job",
		Payload: []byte(`{}`),
	})

	_, err := DecodePayload(j)
	if !errors.Is(err, ErrUnknownJobType) {
		t.Fatalf("expected ErrUnknownJobType, got %v", err)
	}
}

func TestDecodePayload_MissingRequiredIDs(t *testing.T) {
	raw, err := RentalConfirmationPayload{Email: "jane@example.com"}.JSON()
	if err != nil {
		t.Fatalf("JSON error: %v", err)
	}

	j := job.New(job.CreateRequest{
		Type:    TypeRentalConfirmation,
		Payload: raw,
	})

	_, err = DecodePayload(j)
	if !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("expected ErrInvalidJobPayload, got %v", err)
	}
}

func TestDecodePayload_EmptyPayload(t *testing.T) {
	j := job.New(job.CreateRequest{Type: TypePaymentReceipt})

	_, err := DecodePayload(j)
	if !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("expected ErrInvalidJobPayload, got %v", err)
	}
}
