package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dardanh/fieldhub/internal/domain/job"
	"github.com/dardanh/fieldhub/internal/jobs"
	"github.com/dardanh/fieldhub/internal/notifications"
)

// ProcessOne claims and runs at most one job. The bool reports whether a job
// was claimed at all, so callers can drain the queue until it is empty.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	err = w.runObserved(ctx, j)

	if err != nil {
		w.handleFailure(ctx, j, err)
		return true, nil
	}

	err = w.repo.MarkDone(ctx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	return true, nil
}

func (w *Worker) runObserved(ctx context.Context, j job.Job) error {
	if w.prom == nil {
		return w.execute(ctx, j)
	}

	return w.prom.ObserveJob(j.Type, func() (string, error) {
		err := w.execute(ctx, j)

		switch {
		case err == nil:
			return "done", nil
		case j.Attempts >= j.MaxAttempts:
			return "failed", err
		default:
			return "retry", err
		}
	})
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	payload, err := jobs.DecodePayload(j)

	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case jobs.RentalConfirmationPayload:
		return w.notifier.SendRentalConfirmation(ctx, notifications.SendRentalConfirmationInput{
			Email:        p.Email,
			TerrainName:  p.TerrainName,
			SportFieldID: p.SportFieldID,
			RentalID:     p.RentalID,
			StartDate:    p.StartDate.Format("2006-01-02"),
			EndDate:      p.EndDate.Format("2006-01-02"),
		})

	case jobs.PaymentReceiptPayload:
		return w.notifier.SendPaymentReceipt(ctx, notifications.SendPaymentReceiptInput{
			Email:  p.Email,
			UserID: p.UserID,
			Amount: p.Amount,
		})

	default:
		return jobs.ErrUnknownJobType
	}
}

func (w *Worker) handleFailure(ctx context.Context, j job.Job, cause error) {
	// bad payloads never succeed, fail them immediately
	if errors.Is(cause, jobs.ErrUnknownJobType) || errors.Is(cause, jobs.ErrInvalidJobPayload) {
		if err := w.repo.MarkFailed(ctx, j.ID, cause.Error()); err != nil {
			log.Printf("mark failed error: %v", err)
		}
		return
	}

	if j.Attempts >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, "max_attempts: "+cause.Error()); err != nil {
			log.Printf("mark failed error: %v", err)
		}
		return
	}

	runAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))

	if err := w.repo.Reschedule(ctx, j.ID, runAt, cause.Error()); err != nil {
		log.Printf("reschedule error: %v", err)
	}
}
