package types

import (
	"Reconcile/models"
	"Reconcile/pkg/money"
)

// RefundReq POST /orders/:id/refund
type RefundReq struct {
	Amount      money.Money `json:"amount"`
	Currency    string      `json:"currency"`
	Reason      string      `json:"reason" binding:"required,oneof=customer_request duplicate fraudulent service_issue other"`
	Description string      `json:"description" binding:"required,max=255"`
	AuditNotes  string      `json:"audit_notes" binding:"max=512"`
}

type RefundRequest struct {
	RecordId    uint64
	Amount      money.Money
	Reason      models.RefundReason
	Description string
	AuditNotes  string
}

// RefundResult Degraded 为 true 表示未经网关确认的本地退款
type RefundResult struct {
	Record         *PaymentRecord `json:"record"`
	RefundNo       string         `json:"refund_no"`
	Mode           string         `json:"mode"`
	Degraded       bool           `json:"degraded"`
	ConfirmationId string         `json:"confirmation_id,omitempty"`
}

// RecoverResult 启动时对"退款进行中"记录的复核结果
type RecoverResult struct {
	Checked   int `json:"checked"`
	Confirmed int `json:"confirmed"`
	Aborted   int `json:"aborted"`
	Pending   int `json:"pending"`
}

// RefundEvent 退款完成事件，权益系统据此撤销会员
type RefundEvent struct {
	RecordId   uint64      `json:"record_id"`
	OrderSn    string      `json:"order_sn"`
	RefundNo   string      `json:"refund_no"`
	Amount     money.Money `json:"amount"`
	Currency   string      `json:"currency"`
	Mode       string      `json:"mode"`
	RefundedAt int64       `json:"refunded_at"` // unix 毫秒
}
