package service

import (
	"Reconcile/config"
	"Reconcile/models"
	"Reconcile/pkg/gateway"
	"Reconcile/types"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	_ "time/tzdata"
)

var (
	day1 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	fullRange = types.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
	}
)

func testConfig() *config.Config {
	return &config.Config{
		Sync: &config.Sync{
			Concurrency:   4,
			RecordTimeout: 100 * time.Millisecond,
			PageSize:      3,
		},
		Reconcile: &config.Reconcile{Timezone: "UTC"},
		RocketMQ:  &config.RocketMQConfig{},
	}
}

func newRecord(id uint64, cents int64, method models.PayMethod, status models.PayStatus, created time.Time) *models.PaymentRecord {
	r := &models.PaymentRecord{
		ID:        id,
		OrderSn:   fmt.Sprintf("ORD%04d", id),
		Amount:    cents,
		Currency:  "CNY",
		Method:    method,
		Status:    status,
		CreatedAt: created,
	}
	txn := fmt.Sprintf("T%d", id)
	r.TransactionId = &txn
	if status.Terminal() {
		at := created.Add(time.Minute)
		r.CompletedAt = &at
	}
	return r
}

// fakeGateway 按交易号返回预设状态，hang 中的交易号一直阻塞到 ctx 超时
type fakeGateway struct {
	name string

	mu       sync.Mutex
	statuses map[string]gateway.Status
	amounts  map[string]int64
	hang     map[string]bool
	queryErr error
	delay    time.Duration

	calls       int32
	inflight    int32
	maxInflight int32
}

func newFakeGateway(name string) *fakeGateway {
	return &fakeGateway{
		name:     name,
		statuses: map[string]gateway.Status{},
		amounts:  map[string]int64{},
		hang:     map[string]bool{},
	}
}

func (f *fakeGateway) set(txn string, st gateway.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[txn] = st
}

func (f *fakeGateway) Name() string { return f.name }

func (f *fakeGateway) QueryStatus(ctx context.Context, txn string) (*gateway.QueryResult, error) {
	atomic.AddInt32(&f.calls, 1)
	n := atomic.AddInt32(&f.inflight, 1)
	defer atomic.AddInt32(&f.inflight, -1)
	for {
		m := atomic.LoadInt32(&f.maxInflight)
		if n <= m || atomic.CompareAndSwapInt32(&f.maxInflight, m, n) {
			break
		}
	}

	f.mu.Lock()
	st, ok := f.statuses[txn]
	amount := f.amounts[txn]
	hang := f.hang[txn]
	qerr := f.queryErr
	delay := f.delay
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", gateway.ErrTimeout, ctx.Err())
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", gateway.ErrTimeout, ctx.Err())
		}
	}
	if qerr != nil {
		return nil, qerr
	}
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return &gateway.QueryResult{Status: st, Amount: amount, Raw: string(st)}, nil
}

func (f *fakeGateway) Refund(context.Context, *gateway.RefundRequest) (*gateway.RefundResult, error) {
	return nil, gateway.ErrUnavailable
}

func (f *fakeGateway) QueryRefund(context.Context, string) (gateway.RefundStatus, error) {
	return "", gateway.ErrUnavailable
}

// countingCache 记录失效次数，按 generation 分桶
type countingCache struct {
	mu          sync.Mutex
	gen         int64
	reports     map[string]*types.ReconciliationReport
	loads       int
	invalidated int
	// beforeStore 在写入前回调，用于模拟构建报表期间发生的变更
	beforeStore func()
}

func newCountingCache() *countingCache {
	return &countingCache{reports: map[string]*types.ReconciliationReport{}}
}

func (c *countingCache) key(gen int64, rng types.DateRange, method string) string {
	return fmt.Sprintf("%d:%d:%d:%s", gen, rng.Start.UnixNano(), rng.End.UnixNano(), method)
}

func (c *countingCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *countingCache) Load(_ context.Context, gen int64, rng types.DateRange, method string) (*types.ReconciliationReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	return c.reports[c.key(gen, rng, method)], nil
}

func (c *countingCache) Store(_ context.Context, gen int64, rng types.DateRange, method string, r *types.ReconciliationReport, _ time.Duration) error {
	if c.beforeStore != nil {
		c.beforeStore()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[c.key(gen, rng, method)] = r
	return nil
}

func (c *countingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.gen++
	return nil
}

func (c *countingCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

// recordingNotifier 记录收到的退款事件
type recordingNotifier struct {
	mu     sync.Mutex
	events []*types.RefundEvent
}

func (n *recordingNotifier) RefundCompleted(_ context.Context, evt *types.RefundEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
	return nil
}

func (n *recordingNotifier) all() []*types.RefundEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*types.RefundEvent(nil), n.events...)
}
