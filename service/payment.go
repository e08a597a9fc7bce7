package service

import (
	"Reconcile/types"
	"context"
)

// PaymentService 流水查询，始终读穿存储不做缓存
type PaymentService struct {
	Store PaymentRecordStore
}

var _ IPaymentService = (*PaymentService)(nil)

type IPaymentService interface {
	List(ctx context.Context, f *types.RecordFilter) (*types.ListRecordsResp, error)
	GetByOrderSn(ctx context.Context, orderSn string) (*types.PaymentRecord, error)
}

func (p *PaymentService) List(ctx context.Context, f *types.RecordFilter) (*types.ListRecordsResp, error) {
	if f.Range != nil && f.Range.Start.After(f.Range.End) {
		return nil, ErrInvalidRange
	}
	records, total, err := p.Store.Find(ctx, f)
	if err != nil {
		return nil, err
	}

	resp := &types.ListRecordsResp{
		Records: make([]*types.PaymentRecord, 0, len(records)),
		Total:   total,
		Page:    f.Page,
		PerPage: f.PerPage,
	}
	for _, r := range records {
		resp.Records = append(resp.Records, types.NewPaymentRecord(r))
	}
	return resp, nil
}

func (p *PaymentService) GetByOrderSn(ctx context.Context, orderSn string) (*types.PaymentRecord, error) {
	r, err := p.Store.GetByOrderSn(ctx, orderSn)
	if err != nil {
		return nil, err
	}
	return types.NewPaymentRecord(r), nil
}
