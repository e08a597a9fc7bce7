package models

import (
	"Reconcile/pkg/money"
	"time"

	"gorm.io/datatypes"
)

type RefundReason string

const (
	ReasonCustomerRequest RefundReason = "customer_request"
	ReasonDuplicate       RefundReason = "duplicate"
	ReasonFraudulent      RefundReason = "fraudulent"
	ReasonServiceIssue    RefundReason = "service_issue"
	ReasonOther           RefundReason = "other"
)

func (r RefundReason) Valid() bool {
	switch r {
	case ReasonCustomerRequest, ReasonDuplicate, ReasonFraudulent, ReasonServiceIssue, ReasonOther:
		return true
	}
	return false
}

const (
	RefundModeGateway = "gateway"
	RefundModeLocal   = "local"
)

const (
	RefundInFlight  = "in_flight" // 已写日志，网关结果未知
	RefundConfirmed = "confirmed"
	RefundFailed    = "failed"
	RefundAborted   = "aborted" // 恢复时网关确认未退款
)

// RefundLog 退款审计日志，同时作为"退款进行中"标记，用于崩溃后对账恢复
type RefundLog struct {
	ID             uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	RefundNo       string         `gorm:"column:refund_no;type:varchar(64);not null;uniqueIndex:idx_refund_no" json:"refund_no"`
	RecordID       uint64         `gorm:"column:record_id;not null;index:idx_record_id" json:"record_id"`
	Amount         int64          `gorm:"column:amount;not null" json:"amount"` // 单位：分
	Currency       string         `gorm:"column:currency;type:varchar(10);not null;default:'CNY'" json:"currency"`
	Reason         RefundReason   `gorm:"column:reason;type:varchar(32);not null" json:"reason"`
	Description    string         `gorm:"column:description;type:varchar(255)" json:"description"`
	AuditNotes     string         `gorm:"column:audit_notes;type:varchar(512)" json:"audit_notes"`
	Mode           string         `gorm:"column:mode;type:varchar(16);not null" json:"mode"`
	State          string         `gorm:"column:state;type:varchar(16);not null;index:idx_state" json:"state"`
	ConfirmationId string         `gorm:"column:confirmation_id;type:varchar(64)" json:"confirmation_id"`
	FailReason     string         `gorm:"column:fail_reason;type:varchar(255)" json:"fail_reason"`
	GatewayRaw     datatypes.JSON `gorm:"column:gateway_raw" json:"gateway_raw"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (RefundLog) TableName() string {
	return "refund_logs"
}

func (r *RefundLog) Money() money.Money {
	return money.New(r.Amount, r.Currency)
}
