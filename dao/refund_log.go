package dao

import (
	"Reconcile/models"
	"context"

	"gorm.io/gorm"
)

type RefundLog struct {
	Repo[models.RefundLog]
}

func NewRefundLog(db *gorm.DB) *RefundLog {
	return &RefundLog{
		Repo: NewRepo[models.RefundLog](db),
	}
}

func (r *RefundLog) Create(ctx context.Context, log *models.RefundLog) error {
	return r.Db.WithContext(ctx).Create(log).Error
}

// Finish 更新退款日志终态
func (r *RefundLog) Finish(ctx context.Context, refundNo string, state string, confirmationId string, failReason string, raw []byte) error {
	updates := map[string]interface{}{
		"state":           state,
		"confirmation_id": confirmationId,
		"fail_reason":     failReason,
	}
	if len(raw) > 0 {
		updates["gateway_raw"] = raw
	}
	return r.Db.WithContext(ctx).Model(&models.RefundLog{}).
		Where("refund_no = ?", refundNo).
		Updates(updates).Error
}

func (r *RefundLog) HasInFlight(ctx context.Context, recordId uint64) (bool, error) {
	return r.Repo.IsExist(ctx, "record_id = ? AND state = ?", recordId, models.RefundInFlight)
}

func (r *RefundLog) ListInFlight(ctx context.Context, limit int) ([]*models.RefundLog, error) {
	var logs []*models.RefundLog
	err := r.Db.WithContext(ctx).
		Where("state = ?", models.RefundInFlight).
		Order("id ASC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
