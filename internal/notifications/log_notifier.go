package notifications

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) SendRentalConfirmation(ctx context.Context, in SendRentalConfirmationInput) error {
	if err := simulateProvider(ctx); err != nil {
		return err
	}

	log.Printf("notification.rental_confirmation email=%s terrain=%s field=%s rental=%s start=%s end=%s",
		in.Email, in.TerrainName, in.SportFieldID, in.RentalID, in.StartDate, in.EndDate,
	)
	return nil
}

func (n *LogNotifier) SendPaymentReceipt(ctx context.Context, in SendPaymentReceiptInput) error {
	if err := simulateProvider(ctx); err != nil {
		return err
	}

	log.Printf("notification.payment_receipt email=%s user=%s amount=%d",
		in.Email, in.UserID, in.Amount,
	)
	return nil
}

func simulateProvider(ctx context.Context) error {
	// Optional: simulate slow provider
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// Optional: simulate provider outage
	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	return nil
}
