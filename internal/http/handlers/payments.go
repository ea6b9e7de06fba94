package handlers

import (
	"net/http"
	"time"

	"github.com/dardanh/fieldhub/internal/config"
	"github.com/dardanh/fieldhub/internal/domain/job"
	"github.com/dardanh/fieldhub/internal/http/middlewares"
	"github.com/dardanh/fieldhub/internal/jobs"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProcessPaymentRequest carries the simulated card details. They are
// validated, charged against nothing, and discarded: no card field is ever
// persisted or logged.
type ProcessPaymentRequest struct {
	CardHolder  string `json:"cardHolder" binding:"required,min=2,max=120"`
	CardNumber  string `json:"cardNumber" binding:"required,numeric,min=13,max=19"`
	ExpiryMonth int    `json:"expiryMonth" binding:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiryYear" binding:"required,min=2000"`
	CVV         string `json:"cvv" binding:"required,numeric,min=3,max=4"`
	Amount      int    `json:"amount" binding:"required,min=1"`
}

type PaymentsHandler struct {
	jobsRepo JobsCreator
}

func NewPaymentsHandler(jobsRepo JobsCreator) *PaymentsHandler {
	return &PaymentsHandler{jobsRepo: jobsRepo}
}

func (h *PaymentsHandler) ProcessPayment(ctx *gin.Context) {
	var req ProcessPaymentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	now := time.Now().UTC()

	if expired(req.ExpiryMonth, req.ExpiryYear, now) {
		RespondBadRequest(ctx, "Card is expired", gin.H{"fields": []FieldError{
			{Field: "expiryYear", Rule: "expiry", Message: "card expiry must be in the future"},
		}})
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	email, _ := middlewares.EmailFromContext(ctx)

	payload := jobs.PaymentReceiptPayload{
		UserID:      userID,
		Email:       email,
		Amount:      req.Amount,
		RequestedAt: now,
	}

	raw, err := payload.JSON()

	if err != nil {
		RespondInternal(ctx, "Could not process payment")
		return
	}

	reference := uuid.NewString()

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	key := "payment:receipt:" + reference
	uid := userID

	_, err = h.jobsRepo.Create(cctx, job.CreateRequest{
		Type:           jobs.TypePaymentReceipt,
		Payload:        raw,
		RunAt:          now,
		MaxAttempts:    10,
		IdempotencyKey: &key,
		UserID:         &uid,
	})

	if err != nil {
		RespondInternal(ctx, "Could not process payment")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":    "approved",
		"reference": reference,
		"amount":    req.Amount,
	})
}

func expired(month, year int, now time.Time) bool {
	if year < now.Year() {
		return true
	}

	if year == now.Year() && time.Month(month) < now.Month() {
		return true
	}

	return false
}
