package types

import "Reconcile/models"

// BatchSyncReq POST /payment-records/batch-sync
type BatchSyncReq struct {
	Start  string `json:"start" binding:"required"`
	End    string `json:"end" binding:"required"`
	Method string `json:"method" binding:"omitempty,oneof=alipay wechat bank all"`
	Status string `json:"status" binding:"omitempty,oneof=pending completed failed refunded all"`
}

type BatchSyncRequest struct {
	Range  DateRange
	Method models.PayMethod // 空为全部
	Status models.PayStatus // 空为全部
}

type SyncFailure struct {
	RecordId uint64 `json:"record_id"`
	Reason   string `json:"reason"`
}

// BatchSyncResult 部分失败是正常结果，不作为错误返回
type BatchSyncResult struct {
	Total        int            `json:"total"`
	SyncedCount  int            `json:"synced_count"`
	UpdatedCount int            `json:"updated_count"`
	FailedCount  int            `json:"failed_count"`
	Failures     []*SyncFailure `json:"failures"`
	Cancelled    bool           `json:"cancelled"`
}

func (r *BatchSyncResult) Processed() int {
	return r.SyncedCount + r.UpdatedCount + r.FailedCount
}

// SyncRecordResp 单条同步结果
type SyncRecordResp struct {
	Record         *PaymentRecord   `json:"record"`
	Changed        bool             `json:"changed"`
	PreviousStatus models.PayStatus `json:"previous_status"`
}
