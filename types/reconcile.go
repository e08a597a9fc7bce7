package types

import (
	"Reconcile/models"
	"Reconcile/pkg/money"
)

// ReportReq 对账报表请求，日期格式 2006-01-02 或 RFC3339
type ReportReq struct {
	Start  string `json:"start" binding:"required"`
	End    string `json:"end" binding:"required"`
	Method string `json:"method" binding:"omitempty,oneof=alipay wechat bank all"`
}

type ExportReq struct {
	ReportReq
	Format string `json:"format" binding:"omitempty,oneof=xlsx csv"`
}

type StatusTotal struct {
	Count  int64       `json:"count"`
	Amount money.Money `json:"amount"`
}

type ReportSummary struct {
	TotalCount  int64       `json:"total_count"`
	TotalAmount money.Money `json:"total_amount"`
	Pending     StatusTotal `json:"pending"`
	Completed   StatusTotal `json:"completed"`
	Failed      StatusTotal `json:"failed"`
	Refunded    StatusTotal `json:"refunded"`
}

type MethodBreakdown struct {
	Method      models.PayMethod `json:"method"`
	Count       int64            `json:"count"`
	Amount      money.Money      `json:"amount"`
	SuccessRate float64          `json:"success_rate"` // 百分比，保留一位小数
}

type DailyBreakdown struct {
	Date          string      `json:"date"` // 报表时区下的日期 2006-01-02
	Count         int64       `json:"count"`
	Amount        money.Money `json:"amount"`
	SuccessCount  int64       `json:"success_count"`
	SuccessAmount money.Money `json:"success_amount"`
	FailedCount   int64       `json:"failed_count"`
	FailedAmount  money.Money `json:"failed_amount"`
}

// ReconciliationReport 实时计算，不落库
type ReconciliationReport struct {
	Range           DateRange          `json:"range"`
	MethodFilter    string             `json:"method_filter"`
	Timezone        string             `json:"timezone"`
	Currency        string             `json:"currency"`
	Summary         ReportSummary      `json:"summary"`
	MethodBreakdown []*MethodBreakdown `json:"method_breakdown"`
	DailyBreakdown  []*DailyBreakdown  `json:"daily_breakdown"`
}
