package types

import (
	"Reconcile/models"
	"Reconcile/pkg/money"
	"time"
)

// DateRange 闭区间 [Start, End]
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// RecordFilter 流水查询条件，Method/Status 为空表示全部
type RecordFilter struct {
	Range   *DateRange
	Method  models.PayMethod
	Status  models.PayStatus
	Page    int
	PerPage int
}

// ListRecordsReq GET /payment-records 查询参数
type ListRecordsReq struct {
	Start   string `form:"start"`
	End     string `form:"end"`
	Method  string `form:"method" binding:"omitempty,oneof=alipay wechat bank all"`
	Status  string `form:"status" binding:"omitempty,oneof=pending completed failed refunded all"`
	Page    int    `form:"page,default=1" binding:"min=1"`
	PerPage int    `form:"per_page,default=20" binding:"min=1,max=200"`
}

type PaymentRecord struct {
	Id            uint64           `json:"id"`
	TransactionId string           `json:"transaction_id"`
	OrderSn       string           `json:"order_id"`
	Amount        money.Money      `json:"amount"`
	Currency      string           `json:"currency"`
	Method        models.PayMethod `json:"method"`
	Status        models.PayStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	CompletedAt   *time.Time       `json:"completed_at"`
}

type ListRecordsResp struct {
	Records []*PaymentRecord `json:"records"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

func NewPaymentRecord(r *models.PaymentRecord) *PaymentRecord {
	return &PaymentRecord{
		Id:            r.ID,
		TransactionId: r.TxnID(),
		OrderSn:       r.OrderSn,
		Amount:        r.Money(),
		Currency:      r.Money().Currency,
		Method:        r.Method,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		CompletedAt:   r.CompletedAt,
	}
}
