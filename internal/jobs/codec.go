package jobs

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dardanh/fieldhub/internal/domain/job"
)

var (
	ErrUnknownJobType    = errors.New("unknown job type")
	ErrInvalidJobPayload = errors.New("invalid job payload")
)

func IsKnownType(t string) bool {
	switch t {
	case TypeRentalConfirmation, TypePaymentReceipt:
		return true
	default:
		return false
	}
}

// DecodePayload unmarshals job.Payload into the correct typed payload struct.
func DecodePayload(j job.Job) (any, error) {
	if !IsKnownType(j.Type) {
		return nil, ErrUnknownJobType
	}
	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch j.Type {
	case TypeRentalConfirmation:
		var p RentalConfirmationPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		if p.RentalID == "" || p.Email == "" {
			return nil, ErrInvalidJobPayload
		}
		return p, nil

	case TypePaymentReceipt:
		var p PaymentReceiptPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		if p.UserID == "" || p.Email == "" {
			return nil, ErrInvalidJobPayload
		}
		return p, nil

	default:
		return nil, ErrUnknownJobType
	}
}
