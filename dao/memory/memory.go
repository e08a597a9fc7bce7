package memory

import (
	"Reconcile/models"
	"Reconcile/types"
	"context"
	"sort"
	"sync"
)

// Store 内存版流水与退款日志存储，用于测试和本地联调
type Store struct {
	mu      sync.Mutex
	records map[uint64]*models.PaymentRecord
	logs    []*models.RefundLog
	nextId  uint64
}

func NewStore(records ...*models.PaymentRecord) *Store {
	s := &Store{records: make(map[uint64]*models.PaymentRecord)}
	s.Insert(records...)
	return s
}

// Insert id 为 0 时自动分配
func (s *Store) Insert(records ...*models.PaymentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if r.ID == 0 {
			s.nextId++
			r.ID = s.nextId
		} else if r.ID > s.nextId {
			s.nextId = r.ID
		}
		s.records[r.ID] = clone(r)
	}
}

func (s *Store) Find(_ context.Context, f *types.RecordFilter) ([]*models.PaymentRecord, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*models.PaymentRecord, 0)
	for _, r := range s.records {
		if f.Range != nil && !f.Range.Contains(r.CreatedAt) {
			continue
		}
		if f.Method != "" && r.Method != f.Method {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page, perPage := f.Page, f.PerPage
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	total := int64(len(matched))
	from := (page - 1) * perPage
	if from >= len(matched) {
		return []*models.PaymentRecord{}, total, nil
	}
	to := from + perPage
	if to > len(matched) {
		to = len(matched)
	}

	out := make([]*models.PaymentRecord, 0, to-from)
	for _, r := range matched[from:to] {
		out = append(out, clone(r))
	}
	return out, total, nil
}

func (s *Store) Get(_ context.Context, id uint64) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	return clone(r), nil
}

func (s *Store) GetByOrderSn(_ context.Context, orderSn string) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.PaymentRecord
	for _, r := range s.records {
		if r.OrderSn == orderSn && (found == nil || r.ID < found.ID) {
			found = r
		}
	}
	if found == nil {
		return nil, models.ErrRecordNotFound
	}
	return clone(found), nil
}

func (s *Store) Update(_ context.Context, id uint64, patch func(*models.PaymentRecord) error) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	working := clone(r)
	if err := patch(working); err != nil {
		return nil, err
	}
	s.records[id] = working
	return clone(working), nil
}

func (s *Store) Create(_ context.Context, log *models.RefundLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *log
	cp.ID = uint64(len(s.logs) + 1)
	log.ID = cp.ID
	s.logs = append(s.logs, &cp)
	return nil
}

func (s *Store) Finish(_ context.Context, refundNo string, state string, confirmationId string, failReason string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.logs {
		if l.RefundNo == refundNo {
			l.State = state
			l.ConfirmationId = confirmationId
			l.FailReason = failReason
			if len(raw) > 0 {
				l.GatewayRaw = raw
			}
		}
	}
	return nil
}

func (s *Store) HasInFlight(_ context.Context, recordId uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.logs {
		if l.RecordID == recordId && l.State == models.RefundInFlight {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListInFlight(_ context.Context, limit int) ([]*models.RefundLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.RefundLog, 0)
	for _, l := range s.logs {
		if l.State == models.RefundInFlight {
			cp := *l
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// Logs 返回全部退款日志副本
func (s *Store) Logs() []*models.RefundLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.RefundLog, 0, len(s.logs))
	for _, l := range s.logs {
		cp := *l
		out = append(out, &cp)
	}
	return out
}

func clone(r *models.PaymentRecord) *models.PaymentRecord {
	cp := *r
	if r.TransactionId != nil {
		id := *r.TransactionId
		cp.TransactionId = &id
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
