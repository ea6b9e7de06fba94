package rental

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Rental struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	SportFieldID string    `json:"sportFieldId"`
	TerrainName  string    `json:"terrainName"`
	PricePerDay  int       `json:"pricePerDay"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("rental not found")

// dates already booked for the requested range
var ErrDatesUnavailable = errors.New("dates unavailable for this field")

type CreateRentalRequest struct {
	SportFieldID string    `json:"sportFieldId" binding:"required,uuid"`
	StartDate    time.Time `json:"startDate" binding:"required"`
	EndDate      time.Time `json:"endDate" binding:"required"`

	// resolved from the access token, never from the body
	UserID string `json:"-"`
}

// Validate enforces the startDate <= endDate invariant after day
// normalization. Bind tags cannot compare two fields, so this runs in the
// handler right after BindJSON.
func (r CreateRentalRequest) Validate() error {
	s := Day(r.StartDate)
	e := Day(r.EndDate)

	if e.Before(s) {
		return errors.New("endDate must not be before startDate")
	}

	return nil
}

func NewFromCreateRequest(req CreateRentalRequest, terrainName string, pricePerDay int) Rental {
	now := time.Now().UTC()

	return Rental{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		SportFieldID: req.SportFieldID,
		TerrainName:  terrainName,
		PricePerDay:  pricePerDay,
		StartDate:    Day(req.StartDate),
		EndDate:      Day(req.EndDate),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
