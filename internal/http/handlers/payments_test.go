package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dardanh/fieldhub/internal/http/handlers"
	"github.com/dardanh/fieldhub/internal/jobs"
	"github.com/gin-gonic/gin"
)

func TestProcessPaymentHandler(t *testing.T) {
	userID := newUUID()

	validBody := `{
		"cardHolder": "Jane Doe",
		"cardNumber": "4242424242424242",
		"expiryMonth": 12,
		"expiryYear": 2031,
		"cvv": "123",
		"amount": 360
	}`

	tests := []struct {
		name           string
		body           string
		withIdentity   bool
		wantStatusCode int
		wantJobs       int
	}{
		{
			name:           "approved",
			body:           validBody,
			withIdentity:   true,
			wantStatusCode: http.StatusOK,
			wantJobs:       1,
		},
		{
			name: "expired_card",
			body: `{
				"cardHolder": "Jane Doe",
				"cardNumber": "4242424242424242",
				"expiryMonth": 1,
				"expiryYear": 2020,
				"cvv": "123",
				"amount": 360
			}`,
			withIdentity:   true,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "card_number_not_numeric",
			body:           `{"cardHolder":"Jane Doe","cardNumber":"4242-4242","expiryMonth":12,"expiryYear":2031,"cvv":"123","amount":360}`,
			withIdentity:   true,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "no_identity",
			body:           validBody,
			withIdentity:   false,
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			jobsRepo := &fakeJobsRepo{}
			h := handlers.NewPaymentsHandler(jobsRepo)

			var pre []gin.HandlerFunc

			if tt.withIdentity {
				pre = append(pre, identity(userID, "jane@example.com", "user"))
			}

			r := setupRouter(http.MethodPost, "/rentals/processPayment", h.ProcessPayment, pre...)

			req := httptest.NewRequest(http.MethodPost, "/rentals/processPayment", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if len(jobsRepo.created) != tt.wantJobs {
				t.Fatalf("got %d enqueued jobs, want %d", len(jobsRepo.created), tt.wantJobs)
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			created := jobsRepo.created[0]

			if created.Type != jobs.TypePaymentReceipt {
				t.Fatalf("unexpected job type %q", created.Type)
			}

			// card details must never reach the job payload
			if bytes.Contains(created.Payload, []byte("4242")) {
				t.Fatal("card number leaked into the receipt payload")
			}

			var resp struct {
				Status    string `json:"status"`
				Reference string `json:"reference"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("bad response body: %v", err)
			}

			if resp.Status != "approved" || resp.Reference == "" {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}
