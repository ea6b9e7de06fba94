package jobs

import (
	"encoding/json"
	"time"
)

const (
	TypeRentalConfirmation = "rental.confirmation"
	TypePaymentReceipt     = "payment.receipt"
)

// RentalConfirmationPayload is enqueued in the same transaction that
// creates the rental. Keep payloads minimal and ID-based.
type RentalConfirmationPayload struct {
	RentalID     string    `json:"rentalId"`
	SportFieldID string    `json:"sportFieldId"`
	TerrainName  string    `json:"terrainName"`
	Email        string    `json:"email"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	RequestedAt  time.Time `json:"requestedAt"`
}

func (p RentalConfirmationPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// PaymentReceiptPayload is produced by the simulated payment endpoint.
// Card details never enter the payload.
type PaymentReceiptPayload struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	Amount      int       `json:"amount"`
	RequestedAt time.Time `json:"requestedAt"`
}

func (p PaymentReceiptPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
