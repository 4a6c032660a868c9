package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/revaspay/paygate/internal/models"
	"github.com/revaspay/paygate/internal/services/payment/paygate"
)

// MockStatusChecker is a mock implementation of StatusChecker
type MockStatusChecker struct {
	mock.Mock
}

func (m *MockStatusChecker) CheckStatus(ctx context.Context, txReference string) (paygate.GatewayResponse, error) {
	args := m.Called(ctx, txReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(paygate.GatewayResponse), args.Error(1)
}

// fakePendingStore keeps rows in memory and moves checked rows to the back
type fakePendingStore struct {
	mu      sync.Mutex
	pending []models.PayGateTransaction
	listErr error
	updated map[uuid.UUID]int
	checked map[uuid.UUID]int
}

func (s *fakePendingStore) ListPending(ctx context.Context, limit int) ([]models.PayGateTransaction, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]models.PayGateTransaction, 0, len(s.pending))
	for _, tx := range s.pending {
		if _, done := s.updated[tx.ID]; !done {
			rows = append(rows, tx)
		}
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return s.checked[rows[a].ID] < s.checked[rows[b].ID]
	})
	if limit < len(rows) {
		return rows[:limit], nil
	}
	return rows, nil
}

func (s *fakePendingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status int, paymentMethod string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updated == nil {
		s.updated = make(map[uuid.UUID]int)
	}
	s.updated[id] = status
	return nil
}

func (s *fakePendingStore) MarkChecked(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checked == nil {
		s.checked = make(map[uuid.UUID]int)
	}
	max := 0
	for _, v := range s.checked {
		if v > max {
			max = v
		}
	}
	s.checked[id] = max + 1
	return nil
}

func pendingTx(ref string) models.PayGateTransaction {
	tx := models.PayGateTransaction{Status: models.PayGateStatusInProgress}
	tx.ID = uuid.New()
	tx.TxReference = &ref
	return tx
}

func TestReconcileRun(t *testing.T) {
	paid := pendingTx("TXN-PAID")
	waiting := pendingTx("TXN-WAIT")
	expired := pendingTx("TXN-EXP")
	broken := pendingTx("TXN-ERR")
	odd := pendingTx("TXN-ODD")

	store := &fakePendingStore{pending: []models.PayGateTransaction{paid, waiting, expired, broken, odd}}

	checker := new(MockStatusChecker)
	checker.On("CheckStatus", mock.Anything, "TXN-PAID").
		Return(paygate.GatewayResponse{"status": 0.0, "payment_method": "FLOOZ"}, nil).Once()
	checker.On("CheckStatus", mock.Anything, "TXN-WAIT").
		Return(paygate.GatewayResponse{"status": 2.0}, nil).Once()
	checker.On("CheckStatus", mock.Anything, "TXN-EXP").
		Return(paygate.GatewayResponse{"status": 4.0}, nil).Once()
	checker.On("CheckStatus", mock.Anything, "TXN-ERR").
		Return(nil, &paygate.GatewayUnavailableError{Endpoint: "/status", Err: errors.New("timeout")}).Once()
	checker.On("CheckStatus", mock.Anything, "TXN-ODD").
		Return(paygate.GatewayResponse{"message": "unknown"}, nil).Once()

	job := NewReconcileJob(checker, store, 10, nil)
	summary, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ReconcileSummary{Checked: 5, Updated: 2, Unchanged: 1, Failed: 2}, summary)
	assert.Equal(t, map[uuid.UUID]int{
		paid.ID:    models.PayGateStatusSuccess,
		expired.ID: models.PayGateStatusExpired,
	}, store.updated)
	checker.AssertExpectations(t)
}

func TestReconcileRunRespectsBatchSize(t *testing.T) {
	store := &fakePendingStore{pending: []models.PayGateTransaction{pendingTx("A"), pendingTx("B"), pendingTx("C")}}

	checker := new(MockStatusChecker)
	checker.On("CheckStatus", mock.Anything, mock.Anything).
		Return(paygate.GatewayResponse{"status": 2.0}, nil)

	job := NewReconcileJob(checker, store, 2, nil)
	summary, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Checked)
	checker.AssertNumberOfCalls(t, "CheckStatus", 2)
}

func TestReconcileRunNothingPending(t *testing.T) {
	checker := new(MockStatusChecker)
	job := NewReconcileJob(checker, &fakePendingStore{}, 10, nil)

	summary, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Checked)
	checker.AssertNotCalled(t, "CheckStatus", mock.Anything, mock.Anything)
}

func TestReconcileRunListError(t *testing.T) {
	job := NewReconcileJob(new(MockStatusChecker), &fakePendingStore{listErr: errors.New("db down")}, 10, nil)

	_, err := job.Run(context.Background())
	assert.Error(t, err)
}

func TestReconcileRunReachesRowsBehindFailingOnes(t *testing.T) {
	stuckA := pendingTx("TXN-STUCK-A")
	stuckB := pendingTx("TXN-STUCK-B")
	fresh := pendingTx("TXN-FRESH")
	store := &fakePendingStore{pending: []models.PayGateTransaction{stuckA, stuckB, fresh}}

	checker := new(MockStatusChecker)
	checker.On("CheckStatus", mock.Anything, "TXN-STUCK-A").
		Return(paygate.GatewayResponse{"error_code": "E42"}, nil)
	checker.On("CheckStatus", mock.Anything, "TXN-STUCK-B").
		Return(paygate.GatewayResponse{"status": 99.0}, nil)
	checker.On("CheckStatus", mock.Anything, "TXN-FRESH").
		Return(paygate.GatewayResponse{"status": 0.0}, nil).Once()

	job := NewReconcileJob(checker, store, 2, nil)

	first, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReconcileSummary{Checked: 2, Failed: 2}, first)
	assert.Contains(t, store.checked, stuckA.ID)
	assert.Contains(t, store.checked, stuckB.ID)

	second, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.Updated)
	assert.Equal(t, models.PayGateStatusSuccess, store.updated[fresh.ID])
	assert.NotContains(t, store.checked, fresh.ID)
	checker.AssertExpectations(t)
}
