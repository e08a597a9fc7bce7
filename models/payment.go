package models

import (
	"Reconcile/pkg/money"
	"errors"
	"time"
)

type PayMethod string

const (
	MethodAlipay PayMethod = "alipay"
	MethodWechat PayMethod = "wechat"
	MethodBank   PayMethod = "bank"
)

// Methods 固定顺序，报表分组按此顺序输出
var Methods = []PayMethod{MethodAlipay, MethodWechat, MethodBank}

func (m PayMethod) Valid() bool {
	switch m {
	case MethodAlipay, MethodWechat, MethodBank:
		return true
	}
	return false
}

type PayStatus string

const (
	StatusPending   PayStatus = "pending"
	StatusCompleted PayStatus = "completed"
	StatusFailed    PayStatus = "failed"
	StatusRefunded  PayStatus = "refunded"
)

func (s PayStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Terminal completed 之后仍可能退款，但三者都要求 completed_at 有值
func (s PayStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusRefunded
}

// CanTransition 状态机：pending -> completed/failed，completed -> refunded，其余不允许
func CanTransition(from, to PayStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusCompleted || to == StatusFailed
	case StatusCompleted:
		return to == StatusRefunded
	}
	return false
}

// PaymentRecord 支付流水
type PaymentRecord struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionId *string    `gorm:"column:transaction_id;type:varchar(64);uniqueIndex:idx_transaction_id" json:"transaction_id"` // 网关流水号，下单后才有
	OrderSn       string     `gorm:"column:order_sn;type:varchar(32);not null;index:idx_order_sn" json:"order_sn"`
	Amount        int64      `gorm:"column:amount;not null" json:"amount"` // 单位：分
	Currency      string     `gorm:"column:currency;type:varchar(10);not null;default:'CNY'" json:"currency"`
	Method        PayMethod  `gorm:"column:method;type:varchar(16);not null;index:idx_method_created,priority:1" json:"method"`
	Status        PayStatus  `gorm:"column:status;type:varchar(16);not null;default:'pending'" json:"status"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null;index:idx_method_created,priority:2" json:"created_at"`
	CompletedAt   *time.Time `gorm:"column:completed_at" json:"completed_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}

func (p *PaymentRecord) Money() money.Money {
	return money.New(p.Amount, p.Currency)
}

func (p *PaymentRecord) TxnID() string {
	if p.TransactionId == nil {
		return ""
	}
	return *p.TransactionId
}

// Transit 在状态机允许时修改状态，并维护 completed_at
func (p *PaymentRecord) Transit(to PayStatus, at time.Time) bool {
	if !CanTransition(p.Status, to) {
		return false
	}
	p.Status = to
	p.CompletedAt = &at
	return true
}

var ErrRecordNotFound = errors.New("payment record not found")
