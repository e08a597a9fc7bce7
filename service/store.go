package service

import (
	"Reconcile/models"
	"Reconcile/pkg/gateway"
	"Reconcile/types"
	"context"
	"time"
)

// PaymentRecordStore 流水存储，Update 对单条记录原子
type PaymentRecordStore interface {
	Find(ctx context.Context, f *types.RecordFilter) ([]*models.PaymentRecord, int64, error)
	Get(ctx context.Context, id uint64) (*models.PaymentRecord, error)
	GetByOrderSn(ctx context.Context, orderSn string) (*models.PaymentRecord, error)
	Update(ctx context.Context, id uint64, patch func(*models.PaymentRecord) error) (*models.PaymentRecord, error)
}

// RefundLogStore 退款审计日志，同时充当"退款进行中"标记
type RefundLogStore interface {
	Create(ctx context.Context, log *models.RefundLog) error
	Finish(ctx context.Context, refundNo string, state string, confirmationId string, failReason string, raw []byte) error
	HasInFlight(ctx context.Context, recordId uint64) (bool, error)
	ListInFlight(ctx context.Context, limit int) ([]*models.RefundLog, error)
}

// ReportCache 报表缓存。一次 Generate 只读一次 Generation，Load 与 Store 都用这个值，
// 读取之后发生的失效会让随后写入的旧报表不可见。Load 未命中时返回 nil, nil
type ReportCache interface {
	Generation(ctx context.Context) (int64, error)
	Load(ctx context.Context, gen int64, rng types.DateRange, method string) (*types.ReconciliationReport, error)
	Store(ctx context.Context, gen int64, rng types.DateRange, method string, report *types.ReconciliationReport, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// GatewayResolver 按支付方式取网关，未配置返回 nil
type GatewayResolver interface {
	For(method string) gateway.Client
}

// NopReportCache 不缓存
type NopReportCache struct{}

func (NopReportCache) Generation(context.Context) (int64, error) { return 0, nil }

func (NopReportCache) Load(context.Context, int64, types.DateRange, string) (*types.ReconciliationReport, error) {
	return nil, nil
}

func (NopReportCache) Store(context.Context, int64, types.DateRange, string, *types.ReconciliationReport, time.Duration) error {
	return nil
}

func (NopReportCache) Invalidate(context.Context) error { return nil }
