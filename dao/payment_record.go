package dao

import (
	"Reconcile/models"
	"Reconcile/types"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRecord struct {
	Repo[models.PaymentRecord]
}

func NewPaymentRecord(db *gorm.DB) *PaymentRecord {
	return &PaymentRecord{
		Repo: NewRepo[models.PaymentRecord](db),
	}
}

// Find 按条件分页查询，按 id 升序保证分页稳定
func (p *PaymentRecord) Find(ctx context.Context, f *types.RecordFilter) ([]*models.PaymentRecord, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if f.Range != nil {
			db = db.Where("created_at BETWEEN ? AND ?", f.Range.Start, f.Range.End)
		}
		if f.Method != "" {
			db = db.Where("method = ?", f.Method)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		return db
	}

	var total int64
	if err := p.Db.WithContext(ctx).Model(&models.PaymentRecord{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("dao.PaymentRecord.Find count: %w", err)
	}

	page, perPage := f.Page, f.PerPage
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	records := make([]*models.PaymentRecord, 0, perPage)
	err := p.Db.WithContext(ctx).Scopes(scope).
		Order("id ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("dao.PaymentRecord.Find: %w", err)
	}
	return records, total, nil
}

func (p *PaymentRecord) Get(ctx context.Context, id uint64) (*models.PaymentRecord, error) {
	record, err := p.Repo.FindById(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrRecordNotFound
	}
	return record, err
}

func (p *PaymentRecord) GetByOrderSn(ctx context.Context, orderSn string) (*models.PaymentRecord, error) {
	record, err := p.Repo.FindByWhere(ctx, "order_sn = ?", orderSn)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrRecordNotFound
	}
	return record, err
}

// Update 行锁内读取-修改-写回，同一条流水的并发修改被串行化。
// patch 返回错误时事务回滚，错误原样返回
func (p *PaymentRecord) Update(ctx context.Context, id uint64, patch func(*models.PaymentRecord) error) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	err := p.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, id).Error; err != nil {
			return err
		}
		if err := patch(&record); err != nil {
			return err
		}
		return tx.Model(&record).Select("status", "completed_at", "transaction_id", "updated_at").Updates(&record).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
