package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dardanh/fieldhub/internal/config"
	"github.com/dardanh/fieldhub/internal/domain/field"
	"github.com/dardanh/fieldhub/internal/domain/job"
	"github.com/dardanh/fieldhub/internal/domain/rental"
	"github.com/dardanh/fieldhub/internal/domain/user"
	"github.com/dardanh/fieldhub/internal/http/middlewares"
	"github.com/dardanh/fieldhub/internal/jobs"
	"github.com/dardanh/fieldhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RentalsStore interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CreateTx(ctx context.Context, tx pgx.Tx, req rental.CreateRentalRequest, overlapGuard bool) (rental.Rental, error)
	ListAll(ctx context.Context) ([]rental.Rental, error)
	ListByUser(ctx context.Context, userID string) ([]rental.Rental, error)
	ListOverlapping(ctx context.Context, fieldID string, start, end time.Time) ([]rental.Rental, error)
	ListActiveFrom(ctx context.Context, start time.Time) ([]rental.Rental, error)
	GetByID(ctx context.Context, id string) (rental.Rental, error)
	Delete(ctx context.Context, id string) error
}

type JobsCreator interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
	CreateTx(ctx context.Context, tx pgx.Tx, req job.CreateRequest) (job.Job, error)
}

type RentalsHandler struct {
	repo         RentalsStore
	jobsRepo     JobsCreator
	availability *AvailabilityCache
	overlapGuard bool
}

func NewRentalsHandler(repo RentalsStore, jobsRepo JobsCreator, availability *AvailabilityCache, overlapGuard bool) *RentalsHandler {
	return &RentalsHandler{
		repo:         repo,
		jobsRepo:     jobsRepo,
		availability: availability,
		overlapGuard: overlapGuard,
	}
}

// ListAll is admin-only, the router guards it with RequireRole.
func (h *RentalsHandler) ListAll(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rentals, err := h.repo.ListAll(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list rentals")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": rentals,
		"count": len(rentals),
	})
}

func (h *RentalsHandler) ListMine(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rentals, err := h.repo.ListByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list rentals")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": rentals,
		"count": len(rentals),
	})
}

// DateFilter serves GET /rentals/dateFilter?startDate=&endDate=&fieldId=.
// It returns the rentals of the field sharing at least one day with the
// inclusive [startDate, endDate] range; an empty list means the range is
// free to book.
func (h *RentalsHandler) DateFilter(ctx *gin.Context) {
	fieldID := ctx.Query("fieldId")

	if _, err := uuid.Parse(fieldID); err != nil {
		RespondBadRequest(ctx, "fieldId must be a valid UUID", nil)
		return
	}

	start, ok := parseDateQuery(ctx, "startDate")
	if !ok {
		return
	}

	end, ok := parseDateQuery(ctx, "endDate")
	if !ok {
		return
	}

	if rental.Day(end).Before(rental.Day(start)) {
		RespondBadRequest(ctx, "endDate must not be before startDate", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rentals, err := h.repo.ListOverlapping(cctx, fieldID, start, end)

	if err != nil {
		RespondInternal(ctx, "Could not filter rentals")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": rentals,
		"count": len(rentals),
	})
}

// ActiveFromDate feeds the booking calendar: every rental still active on or
// after the given day, expanded into per-field unavailable days.
func (h *RentalsHandler) ActiveFromDate(ctx *gin.Context) {
	start, ok := parseDateQuery(ctx, "startDate")
	if !ok {
		return
	}

	day := rental.Day(start).Format("2006-01-02")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if raw, hit := h.availability.Get(cctx, day); hit {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", raw)
		return
	}

	rentals, err := h.repo.ListActiveFrom(cctx, start)

	if err != nil {
		RespondInternal(ctx, "Could not load availability")
		return
	}

	payload := gin.H{
		"startDate":        rental.Day(start),
		"unavailableDates": rental.ExpandUnavailableDates(rentals),
	}

	if raw, err := json.Marshal(payload); err == nil {
		h.availability.Set(cctx, day, raw)
	}

	ctx.JSON(http.StatusOK, payload)
}

func (h *RentalsHandler) Create(ctx *gin.Context) {
	var req rental.CreateRentalRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	// identity comes from the access token, never from the body
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	req.UserID = userID

	email, _ := middlewares.EmailFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	tx, err := h.repo.BeginTx(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not book the field")
		return
	}

	defer func() { _ = tx.Rollback(cctx) }()

	created, err := h.repo.CreateTx(cctx, tx, req, h.overlapGuard)

	if err != nil {
		switch {
		case errors.Is(err, rental.ErrDatesUnavailable):
			RespondConflict(ctx, "dates_unavailable", "The field is already booked for part of that range.")
		case errors.Is(err, field.ErrNotFound):
			RespondNotFound(ctx, "Sport field not found")
		default:
			RespondInternal(ctx, "Could not book the field")
		}
		return
	}

	payload := jobs.RentalConfirmationPayload{
		RentalID:     created.ID,
		SportFieldID: created.SportFieldID,
		TerrainName:  created.TerrainName,
		Email:        email,
		StartDate:    created.StartDate,
		EndDate:      created.EndDate,
		RequestedAt:  time.Now().UTC(),
	}

	raw, err := payload.JSON()

	if err != nil {
		RespondInternal(ctx, "Could not book the field")
		return
	}

	// one confirmation per rental
	key := "rental:confirm:" + created.ID
	uid := userID

	_, err = h.jobsRepo.CreateTx(cctx, tx, job.CreateRequest{
		Type:           jobs.TypeRentalConfirmation,
		Payload:        raw,
		RunAt:          time.Now().UTC(),
		MaxAttempts:    10,
		IdempotencyKey: &key,
		UserID:         &uid,
	})

	if err != nil && !postgres.IsUniqueViolation(err) {
		RespondInternal(ctx, "Could not book the field")
		return
	}

	err = tx.Commit(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not book the field")
		return
	}

	h.availability.Invalidate(cctx)

	ctx.JSON(http.StatusCreated, created)
}

func (h *RentalsHandler) Cancel(ctx *gin.Context) {
	id := ctx.Param("id")

	if _, err := uuid.Parse(id); err != nil {
		RespondBadRequest(ctx, "rental id must be a valid UUID", nil)
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	role, _ := middlewares.RoleFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	r, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			RespondNotFound(ctx, "Rental not found")
			return
		}

		RespondInternal(ctx, "Could not cancel rental")
		return
	}

	// ownership check with admin override

	if role != user.RoleAdmin && r.UserID != userID {
		RespondForbidden(ctx, "You can only cancel your own rentals")
		return
	}

	err = h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			RespondNotFound(ctx, "Rental not found")
			return
		}

		RespondInternal(ctx, "Could not cancel rental")
		return
	}

	h.availability.Invalidate(cctx)

	ctx.Status(http.StatusNoContent)
}

// parseDateQuery accepts both plain dates (2024-06-11) and RFC3339
// timestamps; either way the value is reduced to a calendar day later.
func parseDateQuery(ctx *gin.Context, name string) (time.Time, bool) {
	raw := ctx.Query(name)

	if raw == "" {
		RespondBadRequest(ctx, name+" is required", nil)
		return time.Time{}, false
	}

	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}

	RespondBadRequest(ctx, name+" must be a date (2006-01-02) or RFC3339 timestamp", nil)

	return time.Time{}, false
}
