package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/revaspay/paygate/internal/metrics"
	"github.com/revaspay/paygate/internal/models"
	"github.com/revaspay/paygate/internal/services/payment/paygate"
)

// Gateway calls in flight at once during a reconciliation pass
const defaultReconcileConcurrency = 5

// StatusChecker looks up payment status at the gateway
type StatusChecker interface {
	CheckStatus(ctx context.Context, txReference string) (paygate.GatewayResponse, error)
}

// PendingStore lists and updates in-progress transactions.
// ListPending must return least recently checked rows first.
type PendingStore interface {
	ListPending(ctx context.Context, limit int) ([]models.PayGateTransaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status int, paymentMethod string) error
	MarkChecked(ctx context.Context, id uuid.UUID) error
}

// ReconcileSummary counts the outcomes of one pass
type ReconcileSummary struct {
	Checked   int
	Updated   int
	Unchanged int
	Failed    int
}

// ReconcileJob polls the gateway for payments still marked in progress.
// Webhooks are the primary source of truth; this catches missed deliveries
// and expirations, which the gateway never notifies.
type ReconcileJob struct {
	checker     StatusChecker
	store       PendingStore
	batchSize   int
	concurrency int
	scheduler   *gocron.Scheduler
	logger      *zap.Logger
}

// NewReconcileJob creates a new reconciliation job
func NewReconcileJob(checker StatusChecker, store PendingStore, batchSize int, logger *zap.Logger) *ReconcileJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ReconcileJob{
		checker:     checker,
		store:       store,
		batchSize:   batchSize,
		concurrency: defaultReconcileConcurrency,
		scheduler:   gocron.NewScheduler(time.UTC),
		logger:      logger.Named("jobs.reconcile"),
	}
}

// Schedule runs the job every interval until Stop. Runs never overlap.
func (j *ReconcileJob) Schedule(ctx context.Context, interval time.Duration) error {
	_, err := j.scheduler.Every(interval).SingletonMode().Do(func() {
		if _, err := j.Run(ctx); err != nil {
			j.logger.Error("reconciliation pass failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	j.scheduler.StartAsync()
	j.logger.Info("reconciliation scheduled", zap.Duration("interval", interval))
	return nil
}

// Stop stops the scheduler
func (j *ReconcileJob) Stop() {
	j.scheduler.Stop()
}

// Run checks one batch of pending transactions. Each transaction gets a single
// gateway call. Rows that stay pending are marked checked so the next pass
// reaches the rows behind them.
func (j *ReconcileJob) Run(ctx context.Context) (ReconcileSummary, error) {
	pending, err := j.store.ListPending(ctx, j.batchSize)
	if err != nil {
		return ReconcileSummary{}, err
	}
	if len(pending) == 0 {
		return ReconcileSummary{}, nil
	}

	var updated, unchanged, failed int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)

	for i := range pending {
		tx := pending[i]
		g.Go(func() error {
			outcome := j.reconcile(gctx, tx)
			switch outcome {
			case "updated":
				atomic.AddInt64(&updated, 1)
			case "unchanged":
				atomic.AddInt64(&unchanged, 1)
			default:
				atomic.AddInt64(&failed, 1)
			}
			if outcome != "updated" {
				j.markChecked(gctx, tx)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := ReconcileSummary{
		Checked:   len(pending),
		Updated:   int(updated),
		Unchanged: int(unchanged),
		Failed:    int(failed),
	}
	j.logger.Info("reconciliation pass finished",
		zap.Int("checked", summary.Checked),
		zap.Int("updated", summary.Updated),
		zap.Int("unchanged", summary.Unchanged),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

func (j *ReconcileJob) reconcile(ctx context.Context, tx models.PayGateTransaction) (outcome string) {
	defer func() { metrics.ReconciledTotal.WithLabelValues(outcome).Inc() }()

	if tx.TxReference == nil || *tx.TxReference == "" {
		return "unchanged"
	}
	ref := *tx.TxReference

	resp, err := j.checker.CheckStatus(ctx, ref)
	if err != nil {
		j.logger.Warn("status check failed", zap.String("tx_reference", ref), zap.Error(err))
		return "failed"
	}

	status, ok := resp.Status()
	if !ok || !models.IsKnownPayGateStatus(status) {
		j.logger.Warn("unexpected status response",
			zap.String("tx_reference", ref),
			zap.Any("response", resp))
		return "failed"
	}
	if status == tx.Status {
		return "unchanged"
	}

	if err := j.store.UpdateStatus(ctx, tx.ID, status, resp.String("payment_method")); err != nil {
		j.logger.Error("status update failed", zap.String("tx_reference", ref), zap.Error(err))
		return "failed"
	}

	j.logger.Info("transaction status updated",
		zap.String("tx_reference", ref),
		zap.Int("from", tx.Status),
		zap.Int("to", status),
		zap.String("status_message", paygate.StatusMessage(status)))
	return "updated"
}

func (j *ReconcileJob) markChecked(ctx context.Context, tx models.PayGateTransaction) {
	if err := j.store.MarkChecked(ctx, tx.ID); err != nil {
		j.logger.Warn("failed to mark transaction checked",
			zap.String("id", tx.ID.String()),
			zap.Error(err))
	}
}
