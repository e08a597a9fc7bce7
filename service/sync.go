package service

import (
	"Reconcile/config"
	"Reconcile/models"
	"Reconcile/pkg/gateway"
	"Reconcile/pkg/log"
	"Reconcile/types"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

var (
	errMissingTxn       = errors.New("missing transaction id")
	errAmountMismatch   = errors.New("amount mismatch")
	errConcurrentChange = errors.New("record changed concurrently")
)

type outcome string

const (
	outcomeUpdated outcome = "updated"
	outcomeSynced  outcome = "synced"
	outcomeFailed  outcome = "failed"
	outcomeSkipped outcome = "skipped"
)

type syncOutcome struct {
	recordId uint64
	kind     outcome
	reason   string
}

type syncUnit struct {
	record   *models.PaymentRecord
	previous models.PayStatus
	changed  bool
}

type SyncService struct {
	Config  *config.Config
	Store   PaymentRecordStore
	Gateway GatewayResolver
	Locker  *RecordLocker
	Cache   ReportCache
	Now     func() time.Time
}

var _ ISyncService = (*SyncService)(nil)

type ISyncService interface {
	Run(ctx context.Context, req *types.BatchSyncRequest) (*types.BatchSyncResult, error)
	SyncOne(ctx context.Context, id uint64) (*types.SyncRecordResp, error)
}

func NewSyncService(conf *config.Config, store PaymentRecordStore, gw GatewayResolver, locker *RecordLocker, cache ReportCache) *SyncService {
	if cache == nil {
		cache = NopReportCache{}
	}
	return &SyncService{
		Config:  conf,
		Store:   store,
		Gateway: gw,
		Locker:  locker,
		Cache:   cache,
		Now:     time.Now,
	}
}

// Run 批量同步。单条失败只记入 failures，不中断批次；
// ctx 取消后尚未开始的记录被跳过，已在途的记录按各自超时结束
func (s *SyncService) Run(ctx context.Context, req *types.BatchSyncRequest) (*types.BatchSyncResult, error) {
	if req.Range.Start.After(req.Range.End) {
		return nil, ErrInvalidRange
	}

	candidates, err := loadAll(ctx, s.Store, &types.RecordFilter{
		Range:  &req.Range,
		Method: req.Method,
		Status: req.Status,
	}, s.Config.Sync.PageSize)
	if err != nil {
		return nil, err
	}

	result := &types.BatchSyncResult{
		Total:    len(candidates),
		Failures: make([]*types.SyncFailure, 0),
	}
	log.L.Info("batch sync start",
		zap.Int("candidates", len(candidates)),
		zap.String("method", string(req.Method)),
		zap.String("status", string(req.Status)),
		zap.Int("concurrency", s.concurrency()),
	)

	p := pool.NewWithResults[*syncOutcome]().WithMaxGoroutines(s.concurrency())
	for _, rec := range candidates {
		if ctx.Err() != nil {
			break
		}
		id := rec.ID
		p.Go(func() *syncOutcome {
			if ctx.Err() != nil {
				return &syncOutcome{recordId: id, kind: outcomeSkipped}
			}
			return s.runOne(ctx, id)
		})
	}
	outcomes := p.Wait()

	for _, o := range outcomes {
		syncRecordsTotal.WithLabelValues(string(o.kind)).Inc()
		switch o.kind {
		case outcomeUpdated:
			result.UpdatedCount++
		case outcomeSynced:
			result.SyncedCount++
		case outcomeFailed:
			result.FailedCount++
			result.Failures = append(result.Failures, &types.SyncFailure{RecordId: o.recordId, Reason: o.reason})
		}
	}
	sort.Slice(result.Failures, func(i, j int) bool { return result.Failures[i].RecordId < result.Failures[j].RecordId })
	result.Cancelled = result.Processed() < result.Total && ctx.Err() != nil

	log.L.Info("batch sync done",
		zap.Int("total", result.Total),
		zap.Int("updated", result.UpdatedCount),
		zap.Int("synced", result.SyncedCount),
		zap.Int("failed", result.FailedCount),
		zap.Bool("cancelled", result.Cancelled),
	)
	return result, nil
}

// runOne 每条记录自带超时，与批次的取消信号脱钩
func (s *SyncService) runOne(ctx context.Context, id uint64) *syncOutcome {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.recordTimeout())
	defer cancel()

	unit, err := s.syncUnit(rctx, id)
	if err != nil {
		log.L.Warn("sync record failed", zap.Uint64("record_id", id), zap.Error(err))
		return &syncOutcome{recordId: id, kind: outcomeFailed, reason: err.Error()}
	}
	if unit.changed {
		return &syncOutcome{recordId: id, kind: outcomeUpdated}
	}
	return &syncOutcome{recordId: id, kind: outcomeSynced}
}

// SyncOne 单条同步，网关错误直接返回给调用方
func (s *SyncService) SyncOne(ctx context.Context, id uint64) (*types.SyncRecordResp, error) {
	ctx, cancel := context.WithTimeout(ctx, s.recordTimeout())
	defer cancel()

	unit, err := s.syncUnit(ctx, id)
	if err != nil {
		syncRecordsTotal.WithLabelValues(string(outcomeFailed)).Inc()
		return nil, err
	}
	if unit.changed {
		syncRecordsTotal.WithLabelValues(string(outcomeUpdated)).Inc()
	} else {
		syncRecordsTotal.WithLabelValues(string(outcomeSynced)).Inc()
	}
	return &types.SyncRecordResp{
		Record:         types.NewPaymentRecord(unit.record),
		Changed:        unit.changed,
		PreviousStatus: unit.previous,
	}, nil
}

// syncUnit 查询网关并按状态机落库，网关失败时绝不修改记录
func (s *SyncService) syncUnit(ctx context.Context, id uint64) (*syncUnit, error) {
	unlock := s.Locker.Lock(id)
	defer unlock()

	rec, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	unit := &syncUnit{record: rec, previous: rec.Status}

	txn := rec.TxnID()
	if txn == "" {
		return nil, errMissingTxn
	}
	client := s.Gateway.For(string(rec.Method))
	if client == nil {
		return nil, fmt.Errorf("%w: %s", gateway.ErrNotConfigured, rec.Method)
	}

	start := time.Now()
	res, err := client.QueryStatus(ctx, txn)
	gatewayCallDuration.WithLabelValues(client.Name(), "query", resultLabel(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if res.Amount != 0 && res.Amount != rec.Amount {
		return nil, fmt.Errorf("%w: local %d, gateway %d", errAmountMismatch, rec.Amount, res.Amount)
	}

	target := models.PayStatus(res.Status)
	if target == rec.Status {
		return unit, nil
	}
	if !models.CanTransition(rec.Status, target) {
		log.L.Warn("ignore gateway status transition",
			zap.Uint64("record_id", id),
			zap.String("local", string(rec.Status)),
			zap.String("gateway", string(target)),
			zap.String("raw", res.Raw),
		)
		return unit, nil
	}

	at := s.Now()
	if target == models.StatusCompleted && res.SuccessTime != nil {
		at = *res.SuccessTime
	}
	updated, err := s.Store.Update(ctx, id, func(r *models.PaymentRecord) error {
		if r.Status != rec.Status {
			return fmt.Errorf("%w: %s -> %s", errConcurrentChange, rec.Status, r.Status)
		}
		r.Transit(target, at)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// 每次落库立即失效，批次进行中生成的报表也不会读到旧缓存
	s.invalidate()

	log.L.Info("payment record synced",
		zap.Uint64("record_id", id),
		zap.String("from", string(rec.Status)),
		zap.String("to", string(updated.Status)),
	)
	unit.record = updated
	unit.changed = true
	return unit, nil
}

func (s *SyncService) invalidate() {
	if err := s.Cache.Invalidate(context.Background()); err != nil {
		log.L.Warn("invalidate report cache failed", zap.Error(err))
	}
}

func (s *SyncService) concurrency() int {
	if s.Config.Sync.Concurrency <= 0 {
		return 8
	}
	return s.Config.Sync.Concurrency
}

func (s *SyncService) recordTimeout() time.Duration {
	if s.Config.Sync.RecordTimeout <= 0 {
		return 5 * time.Second
	}
	return s.Config.Sync.RecordTimeout
}
