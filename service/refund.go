package service

import (
	"Reconcile/config"
	"Reconcile/models"
	"Reconcile/pkg/gateway"
	"Reconcile/pkg/log"
	"Reconcile/pkg/utils"
	"Reconcile/types"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	maxDescription = 255
	maxAuditNotes  = 512
	maxFailReason  = 255
	recoverBatch   = 200
)

type RefundService struct {
	Config   *config.Config
	Store    PaymentRecordStore
	Logs     RefundLogStore
	Gateway  GatewayResolver
	Locker   *RecordLocker
	Cache    ReportCache
	Notifier RefundNotifier
	Now      func() time.Time
}

var _ IRefundService = (*RefundService)(nil)

type IRefundService interface {
	Refund(ctx context.Context, req *types.RefundRequest) (*types.RefundResult, error)
	RecoverInFlight(ctx context.Context) (*types.RecoverResult, error)
}

func NewRefundService(
	conf *config.Config,
	store PaymentRecordStore,
	logs RefundLogStore,
	gw GatewayResolver,
	locker *RecordLocker,
	cache ReportCache,
	notifier RefundNotifier,
) *RefundService {
	if cache == nil {
		cache = NopReportCache{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &RefundService{
		Config:   conf,
		Store:    store,
		Logs:     logs,
		Gateway:  gw,
		Locker:   locker,
		Cache:    cache,
		Notifier: notifier,
		Now:      time.Now,
	}
}

// validateRefund 只校验请求本身，记录相关的校验在加锁后进行
func validateRefund(req *types.RefundRequest) error {
	if req.RecordId == 0 {
		return fmt.Errorf("%w: record id is required", ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: refund amount must be greater than 0", ErrValidation)
	}
	if !req.Reason.Valid() {
		return fmt.Errorf("%w: unknown refund reason %q", ErrValidation, req.Reason)
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if utf8.RuneCountInString(req.Description) > maxDescription {
		return fmt.Errorf("%w: description longer than %d", ErrValidation, maxDescription)
	}
	if utf8.RuneCountInString(req.AuditNotes) > maxAuditNotes {
		return fmt.Errorf("%w: audit notes longer than %d", ErrValidation, maxAuditNotes)
	}
	return nil
}

// Refund 校验全部通过后才产生副作用。
// 有网关时先写"进行中"日志再调网关，网关成功后才修改流水；
// 无网关时仅本地改状态，并在结果里标记降级
func (s *RefundService) Refund(ctx context.Context, req *types.RefundRequest) (*types.RefundResult, error) {
	if err := validateRefund(req); err != nil {
		return nil, err
	}

	unlock := s.Locker.Lock(req.RecordId)
	defer unlock()

	rec, err := s.Store.Get(ctx, req.RecordId)
	if err != nil {
		return nil, err
	}

	cmp, err := req.Amount.Cmp(rec.Money())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if cmp > 0 {
		return nil, fmt.Errorf("%w: refund amount %s exceeds payment amount %s", ErrValidation, req.Amount, rec.Money())
	}

	switch rec.Status {
	case models.StatusCompleted:
	case models.StatusRefunded:
		return nil, ErrAlreadyRefunded
	default:
		return nil, fmt.Errorf("%w: cannot refund a %s payment", ErrInvalidState, rec.Status)
	}

	inflight, err := s.Logs.HasInFlight(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	if inflight {
		return nil, fmt.Errorf("%w: a refund for this payment is already in flight", ErrInvalidState)
	}

	client := s.Gateway.For(string(rec.Method))
	if client == nil {
		return s.refundLocal(ctx, rec, req)
	}
	return s.refundGateway(ctx, client, rec, req)
}

func (s *RefundService) refundGateway(ctx context.Context, client gateway.Client, rec *models.PaymentRecord, req *types.RefundRequest) (*types.RefundResult, error) {
	if rec.TxnID() == "" {
		return nil, fmt.Errorf("%w: payment has no gateway transaction id", ErrInvalidState)
	}

	refundNo := utils.GenerateRefundNo("RF")
	entry := newRefundLog(refundNo, rec, req, models.RefundModeGateway, models.RefundInFlight)
	if err := s.Logs.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create refund log: %w", err)
	}

	start := time.Now()
	res, err := client.Refund(ctx, &gateway.RefundRequest{
		TransactionId: rec.TxnID(),
		RefundNo:      refundNo,
		Amount:        req.Amount.Cents,
		Total:         rec.Amount,
		Currency:      rec.Money().Currency,
		Reason:        string(req.Reason),
	})
	gatewayCallDuration.WithLabelValues(client.Name(), "refund", resultLabel(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		if !gateway.Definite(err) {
			// 网关可能已退款，日志保持 in_flight：挡住重复退款，交给 RecoverInFlight 按退款单号复核
			refundsTotal.WithLabelValues(models.RefundModeGateway, "unknown").Inc()
			log.L.Error("gateway refund outcome unknown, keep in flight",
				zap.Uint64("record_id", rec.ID),
				zap.String("refund_no", refundNo),
				zap.Error(err),
			)
			return nil, err
		}
		refundsTotal.WithLabelValues(models.RefundModeGateway, "failed").Inc()
		s.finish(refundNo, models.RefundFailed, "", err.Error(), nil)
		log.L.Warn("gateway refund rejected",
			zap.Uint64("record_id", rec.ID),
			zap.String("refund_no", refundNo),
			zap.Error(err),
		)
		return nil, err
	}

	// 网关已确认，后续即使本地写失败，日志仍停在 in_flight，由 RecoverInFlight 收尾
	updated, err := s.markRefunded(context.WithoutCancel(ctx), rec.ID)
	if err != nil {
		log.L.Error("gateway refunded but local update failed",
			zap.Uint64("record_id", rec.ID),
			zap.String("refund_no", refundNo),
			zap.Error(err),
		)
		return nil, err
	}
	s.finish(refundNo, models.RefundConfirmed, res.ConfirmationId, "", res.Raw)
	refundsTotal.WithLabelValues(models.RefundModeGateway, "confirmed").Inc()
	s.afterRefund(ctx, updated, refundNo, models.RefundModeGateway, req)

	return &types.RefundResult{
		Record:         types.NewPaymentRecord(updated),
		RefundNo:       refundNo,
		Mode:           models.RefundModeGateway,
		ConfirmationId: res.ConfirmationId,
	}, nil
}

func (s *RefundService) refundLocal(ctx context.Context, rec *models.PaymentRecord, req *types.RefundRequest) (*types.RefundResult, error) {
	updated, err := s.markRefunded(ctx, rec.ID)
	if err != nil {
		return nil, err
	}

	refundNo := utils.GenerateRefundNo("RL")
	entry := newRefundLog(refundNo, rec, req, models.RefundModeLocal, models.RefundConfirmed)
	if err := s.Logs.Create(ctx, entry); err != nil {
		log.L.Error("create local refund log failed", zap.Uint64("record_id", rec.ID), zap.Error(err))
	}
	refundsTotal.WithLabelValues(models.RefundModeLocal, "confirmed").Inc()
	log.L.Warn("refund applied locally without gateway",
		zap.Uint64("record_id", rec.ID),
		zap.String("method", string(rec.Method)),
		zap.String("refund_no", refundNo),
	)
	s.afterRefund(ctx, updated, refundNo, models.RefundModeLocal, req)

	return &types.RefundResult{
		Record:   types.NewPaymentRecord(updated),
		RefundNo: refundNo,
		Mode:     models.RefundModeLocal,
		Degraded: true,
	}, nil
}

// markRefunded 行锁内 completed -> refunded，已是 refunded 视为成功（并发同步先落了库）
func (s *RefundService) markRefunded(ctx context.Context, id uint64) (*models.PaymentRecord, error) {
	now := s.Now()
	return s.Store.Update(ctx, id, func(r *models.PaymentRecord) error {
		if r.Status == models.StatusRefunded {
			return nil
		}
		if !r.Transit(models.StatusRefunded, now) {
			return fmt.Errorf("%w: cannot refund a %s payment", ErrInvalidState, r.Status)
		}
		return nil
	})
}

func (s *RefundService) afterRefund(ctx context.Context, rec *models.PaymentRecord, refundNo, mode string, req *types.RefundRequest) {
	if err := s.Cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		log.L.Warn("invalidate report cache failed", zap.Error(err))
	}

	refundedAt := s.Now()
	if rec.CompletedAt != nil {
		refundedAt = *rec.CompletedAt
	}
	evt := &types.RefundEvent{
		RecordId:   rec.ID,
		OrderSn:    rec.OrderSn,
		RefundNo:   refundNo,
		Amount:     req.Amount,
		Currency:   req.Amount.Currency,
		Mode:       mode,
		RefundedAt: refundedAt.UnixMilli(),
	}
	if err := s.Notifier.RefundCompleted(context.WithoutCancel(ctx), evt); err != nil {
		log.L.Error("notify refund completed failed", zap.String("refund_no", refundNo), zap.Error(err))
	}
}

func (s *RefundService) finish(refundNo, state, confirmationId, failReason string, raw []byte) {
	failReason = truncateRunes(failReason, maxFailReason)
	if err := s.Logs.Finish(context.Background(), refundNo, state, confirmationId, failReason, raw); err != nil {
		log.L.Error("finish refund log failed", zap.String("refund_no", refundNo), zap.String("state", state), zap.Error(err))
	}
}

// RecoverInFlight 复核所有"进行中"的退款：网关确认成功则补齐本地状态，
// 网关确认未退款则标记 aborted，网关不可用时保留到下次
func (s *RefundService) RecoverInFlight(ctx context.Context) (*types.RecoverResult, error) {
	logs, err := s.Logs.ListInFlight(ctx, recoverBatch)
	if err != nil {
		return nil, err
	}

	result := &types.RecoverResult{}
	for _, entry := range logs {
		if ctx.Err() != nil {
			break
		}
		result.Checked++
		switch s.recoverOne(ctx, entry) {
		case models.RefundConfirmed:
			result.Confirmed++
		case models.RefundAborted:
			result.Aborted++
		default:
			result.Pending++
		}
	}
	log.L.Info("recover in-flight refunds",
		zap.Int("checked", result.Checked),
		zap.Int("confirmed", result.Confirmed),
		zap.Int("aborted", result.Aborted),
		zap.Int("pending", result.Pending),
	)
	return result, nil
}

func (s *RefundService) recoverOne(ctx context.Context, entry *models.RefundLog) string {
	unlock := s.Locker.Lock(entry.RecordID)
	defer unlock()

	lg := log.L.With(zap.Uint64("record_id", entry.RecordID), zap.String("refund_no", entry.RefundNo))

	rec, err := s.Store.Get(ctx, entry.RecordID)
	if errors.Is(err, ErrRecordNotFound) {
		s.finish(entry.RefundNo, models.RefundAborted, "", "payment record not found", nil)
		return models.RefundAborted
	}
	if err != nil {
		lg.Warn("recover refund: load record failed", zap.Error(err))
		return models.RefundInFlight
	}

	client := s.Gateway.For(string(rec.Method))
	if client == nil {
		lg.Warn("recover refund: gateway not configured, keep in flight")
		return models.RefundInFlight
	}

	rctx, cancel := context.WithTimeout(ctx, s.recordTimeout())
	defer cancel()
	status, err := client.QueryRefund(rctx, entry.RefundNo)
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		status = gateway.RefundClosed
	case err != nil:
		lg.Warn("recover refund: query gateway failed", zap.Error(err))
		return models.RefundInFlight
	}

	switch status {
	case gateway.RefundSucceeded:
		updated, err := s.markRefunded(ctx, rec.ID)
		if err != nil {
			lg.Error("recover refund: local update failed", zap.Error(err))
			return models.RefundInFlight
		}
		s.finish(entry.RefundNo, models.RefundConfirmed, "", "", nil)
		s.afterRefund(ctx, updated, entry.RefundNo, models.RefundModeGateway, &types.RefundRequest{
			RecordId: entry.RecordID,
			Amount:   entry.Money(),
			Reason:   entry.Reason,
		})
		lg.Info("recover refund: confirmed by gateway")
		return models.RefundConfirmed
	case gateway.RefundClosed:
		s.finish(entry.RefundNo, models.RefundAborted, "", "gateway reports refund not executed", nil)
		lg.Info("recover refund: aborted")
		return models.RefundAborted
	}
	return models.RefundInFlight
}

func (s *RefundService) recordTimeout() time.Duration {
	if s.Config.Sync.RecordTimeout <= 0 {
		return 5 * time.Second
	}
	return s.Config.Sync.RecordTimeout
}

func newRefundLog(refundNo string, rec *models.PaymentRecord, req *types.RefundRequest, mode, state string) *models.RefundLog {
	return &models.RefundLog{
		RefundNo:    refundNo,
		RecordID:    rec.ID,
		Amount:      req.Amount.Cents,
		Currency:    rec.Money().Currency,
		Reason:      req.Reason,
		Description: req.Description,
		AuditNotes:  req.AuditNotes,
		Mode:        mode,
		State:       state,
	}
}

// truncateRunes 按字符截断，避免切开多字节字符
func truncateRunes(v string, max int) string {
	if utf8.RuneCountInString(v) <= max {
		return v
	}
	return string([]rune(v)[:max])
}
