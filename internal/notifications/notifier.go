package notifications

import "context"

type SendRentalConfirmationInput struct {
	Email        string
	TerrainName  string
	SportFieldID string
	RentalID     string
	StartDate    string
	EndDate      string
}

type SendPaymentReceiptInput struct {
	Email  string
	UserID string
	Amount int
}

type Notifier interface {
	SendRentalConfirmation(ctx context.Context, input SendRentalConfirmationInput) error
	SendPaymentReceipt(ctx context.Context, input SendPaymentReceiptInput) error
}
