package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dardanh/fieldhub/internal/domain/job"
	"github.com/dardanh/fieldhub/internal/jobs"
	"github.com/dardanh/fieldhub/internal/notifications"
)

type fakeJobsRepo struct {
	claimFn func(ctx context.Context, workerID string) (job.Job, error)

	done        []string
	failed      map[string]string
	rescheduled map[string]time.Time
}

func newFakeJobsRepo() *fakeJobsRepo {
	return &fakeJobsRepo{
		failed:      map[string]string{},
		rescheduled: map[string]time.Time{},
	}
}

func (f *fakeJobsRepo) ClaimNext(ctx context.Context, workerID string) (job.Job, error) {
	if f.claimFn != nil {
		return f.claimFn(ctx, workerID)
	}
	return job.Job{}, job.ErrJobNotFound
}

func (f *fakeJobsRepo) MarkDone(ctx context.Context, id string) error {
	f.done = append(f.done, id)
	return nil
}

func (f *fakeJobsRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	f.failed[id] = errMsg
	return nil
}

func (f *fakeJobsRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	f.rescheduled[id] = runAt
	return nil
}

func (f *fakeJobsRepo) RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error) {
	return 0, nil
}

type fakeNotifier struct {
	confirmations []notifications.SendRentalConfirmationInput
	receipts      []notifications.SendPaymentReceiptInput
	err           error
}

func (f *fakeNotifier) SendRentalConfirmation(ctx context.Context, in notifications.SendRentalConfirmationInput) error {
	f.confirmations = append(f.confirmations, in)
	return f.err
}

func (f *fakeNotifier) SendPaymentReceipt(ctx context.Context, in notifications.SendPaymentReceiptInput) error {
	f.receipts = append(f.receipts, in)
	return f.err
}

func confirmationJob(t *testing.T, attempts, maxAttempts int) job.Job {
	t.Helper()

	raw, err := jobs.RentalConfirmationPayload{
		RentalID:     "rental-1",
		SportFieldID: "field-1",
		TerrainName:  "Arena One",
		Email:        "jane@example.com",
		StartDate:    time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC),
	}.JSON()

	if err != nil {
		t.Fatalf("payload encode: %v", err)
	}

	j := job.New(job.CreateRequest{
		Type:        jobs.TypeRentalConfirmation,
		Payload:     raw,
		MaxAttempts: maxAttempts,
	})
	j.Attempts = attempts

	return j
}

func TestProcessOne_NoPendingJob(t *testing.T) {
	w := New(Config{WorkerID: "w1"}, newFakeJobsRepo(), &fakeNotifier{}, nil)

	processed, err := w.ProcessOne(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if processed {
		t.Fatal("no job should have been processed")
	}
}

func TestProcessOne_DeliversAndMarksDone(t *testing.T) {
	repo := newFakeJobsRepo()
	j := confirmationJob(t, 1, 5)
	repo.claimFn = func(ctx context.Context, workerID string) (job.Job, error) { return j, nil }

	notifier := &fakeNotifier{}
	w := New(Config{WorkerID: "w1"}, repo, notifier, nil)

	processed, err := w.ProcessOne(context.Background())

	if err != nil || !processed {
		t.Fatalf("processed=%v err=%v", processed, err)
	}

	if len(notifier.confirmations) != 1 {
		t.Fatalf("expected 1 confirmation, got %d", len(notifier.confirmations))
	}

	if notifier.confirmations[0].Email != "jane@example.com" {
		t.Fatalf("unexpected recipient: %+v", notifier.confirmations[0])
	}

	if len(repo.done) != 1 || repo.done[0] != j.ID {
		t.Fatalf("job not marked done: %v", repo.done)
	}
}

func TestProcessOne_ProviderErrorReschedulesWithBackoff(t *testing.T) {
	repo := newFakeJobsRepo()
	j := confirmationJob(t, 2, 5)
	repo.claimFn = func(ctx context.Context, workerID string) (job.Job, error) { return j, nil }

	notifier := &fakeNotifier{err: errors.New("provider down")}
	w := New(Config{WorkerID: "w1"}, repo, notifier, nil)

	before := time.Now().UTC()

	processed, err := w.ProcessOne(context.Background())

	if err != nil || !processed {
		t.Fatalf("processed=%v err=%v", processed, err)
	}

	runAt, ok := repo.rescheduled[j.ID]

	if !ok {
		t.Fatalf("job was not rescheduled; failed=%v done=%v", repo.failed, repo.done)
	}

	if !runAt.After(before) {
		t.Fatalf("reschedule time %v should be in the future", runAt)
	}
}

func TestProcessOne_MaxAttemptsMarksFailed(t *testing.T) {
	repo := newFakeJobsRepo()
	j := confirmationJob(t, 5, 5)
	repo.claimFn = func(ctx context.Context, workerID string) (job.Job, error) { return j, nil }

	notifier := &fakeNotifier{err: errors.New("provider down")}
	w := New(Config{WorkerID: "w1"}, repo, notifier, nil)

	processed, err := w.ProcessOne(context.Background())

	if err != nil || !processed {
		t.Fatalf("processed=%v err=%v", processed, err)
	}

	if _, ok := repo.failed[j.ID]; !ok {
		t.Fatalf("job should be failed after max attempts; rescheduled=%v", repo.rescheduled)
	}
}

func TestProcessOne_BadPayloadFailsImmediately(t *testing.T) {
	repo := newFakeJobsRepo()

	j := job.New(job.CreateRequest{
		Type:        "mystery.job",
		Payload:     []byte(`{}`),
		MaxAttempts: 5,
	})
	j.Attempts = 1

	repo.claimFn = func(ctx context.Context, workerID string) (job.Job, error) { return j, nil }

	w := New(Config{WorkerID: "w1"}, repo, &fakeNotifier{}, nil)

	processed, err := w.ProcessOne(context.Background())

	if err != nil || !processed {
		t.Fatalf("processed=%v err=%v", processed, err)
	}

	if _, ok := repo.failed[j.ID]; !ok {
		t.Fatal("unknown job type must fail immediately, not retry")
	}

	if len(repo.rescheduled) != 0 {
		t.Fatalf("unknown job type must not be rescheduled: %v", repo.rescheduled)
	}
}
