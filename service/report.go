package service

import (
	"Reconcile/config"
	"Reconcile/models"
	"Reconcile/pkg/log"
	"Reconcile/pkg/money"
	"Reconcile/types"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const dayLayout = "2006-01-02"

type bucket struct {
	count, amount               int64
	successCount, successAmount int64
	failedCount, failedAmount   int64
}

func (b *bucket) add(r *models.PaymentRecord) {
	b.count++
	b.amount += r.Amount
	switch r.Status {
	case models.StatusCompleted:
		b.successCount++
		b.successAmount += r.Amount
	case models.StatusFailed:
		b.failedCount++
		b.failedAmount += r.Amount
	}
}

// successRate 百分比，整数运算四舍五入到一位小数，空桶为 0
func successRate(success, total int64) float64 {
	if total == 0 {
		return 0
	}
	tenths := (success*2000 + total) / (2 * total)
	return float64(tenths) / 10
}

// NormalizeMethod "" 与 "all" 都表示不过滤
func NormalizeMethod(method string) (models.PayMethod, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" || method == "all" {
		return "", nil
	}
	m := models.PayMethod(method)
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown method %q", ErrValidation, method)
	}
	return m, nil
}

// BuildReport 纯函数：相同输入得到相同输出，不做任何 I/O。
// 金额全部按分累加，币种不一致时报错
func BuildReport(records []*models.PaymentRecord, rng types.DateRange, method models.PayMethod, loc *time.Location) (*types.ReconciliationReport, error) {
	if rng.Start.After(rng.End) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, rng.Start.Format(time.RFC3339), rng.End.Format(time.RFC3339))
	}
	if loc == nil {
		loc = time.UTC
	}

	currency := ""
	var (
		total     bucket
		perStatus = map[models.PayStatus]*bucket{}
		perMethod = map[models.PayMethod]*bucket{}
		perDay    = map[string]*bucket{}
	)
	for _, r := range records {
		if !rng.Contains(r.CreatedAt) {
			continue
		}
		if method != "" && r.Method != method {
			continue
		}
		cur := r.Money().Currency
		if currency == "" {
			currency = cur
		} else if cur != currency {
			return nil, fmt.Errorf("%w: mixed currencies %s and %s in report range", ErrValidation, currency, cur)
		}

		total.add(r)
		get(perStatus, r.Status).add(r)
		get(perMethod, r.Method).add(r)
		get(perDay, r.CreatedAt.In(loc).Format(dayLayout)).add(r)
	}
	if currency == "" {
		currency = money.DefaultCurrency
	}

	m := func(cents int64) money.Money { return money.New(cents, currency) }
	statusTotal := func(s models.PayStatus) types.StatusTotal {
		b, ok := perStatus[s]
		if !ok {
			return types.StatusTotal{Amount: m(0)}
		}
		return types.StatusTotal{Count: b.count, Amount: m(b.amount)}
	}

	filter := "all"
	if method != "" {
		filter = string(method)
	}
	report := &types.ReconciliationReport{
		Range:        rng,
		MethodFilter: filter,
		Timezone:     loc.String(),
		Currency:     currency,
		Summary: types.ReportSummary{
			TotalCount:  total.count,
			TotalAmount: m(total.amount),
			Pending:     statusTotal(models.StatusPending),
			Completed:   statusTotal(models.StatusCompleted),
			Failed:      statusTotal(models.StatusFailed),
			Refunded:    statusTotal(models.StatusRefunded),
		},
		MethodBreakdown: make([]*types.MethodBreakdown, 0, len(perMethod)),
		DailyBreakdown:  make([]*types.DailyBreakdown, 0, len(perDay)),
	}

	for _, pm := range methodOrder(perMethod) {
		b := perMethod[pm]
		report.MethodBreakdown = append(report.MethodBreakdown, &types.MethodBreakdown{
			Method:      pm,
			Count:       b.count,
			Amount:      m(b.amount),
			SuccessRate: successRate(b.successCount, b.count),
		})
	}

	days := make([]string, 0, len(perDay))
	for d := range perDay {
		days = append(days, d)
	}
	sort.Strings(days)
	for _, d := range days {
		b := perDay[d]
		report.DailyBreakdown = append(report.DailyBreakdown, &types.DailyBreakdown{
			Date:          d,
			Count:         b.count,
			Amount:        m(b.amount),
			SuccessCount:  b.successCount,
			SuccessAmount: m(b.successAmount),
			FailedCount:   b.failedCount,
			FailedAmount:  m(b.failedAmount),
		})
	}
	return report, nil
}

func get[K comparable](m map[K]*bucket, k K) *bucket {
	b, ok := m[k]
	if !ok {
		b = &bucket{}
		m[k] = b
	}
	return b
}

// methodOrder 已知方式按固定顺序，历史数据里的未知方式排在后面
func methodOrder(perMethod map[models.PayMethod]*bucket) []models.PayMethod {
	out := make([]models.PayMethod, 0, len(perMethod))
	for _, pm := range models.Methods {
		if _, ok := perMethod[pm]; ok {
			out = append(out, pm)
		}
	}
	var unknown []models.PayMethod
	for pm := range perMethod {
		if !pm.Valid() {
			unknown = append(unknown, pm)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return append(out, unknown...)
}

// ParseRange 支持 2006-01-02（按报表时区取整天）和 RFC3339
func ParseRange(start, end string, loc *time.Location) (types.DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	s, err := parseBound(start, loc, false)
	if err != nil {
		return types.DateRange{}, err
	}
	e, err := parseBound(end, loc, true)
	if err != nil {
		return types.DateRange{}, err
	}
	rng := types.DateRange{Start: s, End: e}
	if rng.Start.After(rng.End) {
		return rng, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}
	return rng, nil
}

func parseBound(v string, loc *time.Location, endOfDay bool) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.ParseInLocation(dayLayout, v, loc); err == nil {
		if endOfDay {
			return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrValidation, v)
	}
	return t, nil
}

type ReportService struct {
	Config *config.Config
	Store  PaymentRecordStore
	Cache  ReportCache
	loc    *time.Location
}

var _ IReportService = (*ReportService)(nil)

type IReportService interface {
	Generate(ctx context.Context, rng types.DateRange, method models.PayMethod) (*types.ReconciliationReport, error)
	Location() *time.Location
}

func NewReportService(conf *config.Config, store PaymentRecordStore, cache ReportCache) (*ReportService, error) {
	loc, err := time.LoadLocation(conf.Reconcile.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load reconcile timezone %q: %w", conf.Reconcile.Timezone, err)
	}
	if cache == nil {
		cache = NopReportCache{}
	}
	return &ReportService{Config: conf, Store: store, Cache: cache, loc: loc}, nil
}

func (s *ReportService) Location() *time.Location { return s.loc }

// Generate 读穿存储后构建报表，缓存仅作为可选加速，读写失败不影响结果
func (s *ReportService) Generate(ctx context.Context, rng types.DateRange, method models.PayMethod) (*types.ReconciliationReport, error) {
	if rng.Start.After(rng.End) {
		return nil, ErrInvalidRange
	}

	ttl := s.Config.Reconcile.CacheTTL
	cacheable := false
	var gen int64
	if ttl > 0 {
		g, err := s.Cache.Generation(ctx)
		if err != nil {
			log.L.Warn("read report cache generation failed", zap.Error(err))
		} else {
			gen, cacheable = g, true
		}
	}

	if cacheable {
		cached, err := s.Cache.Load(ctx, gen, rng, string(method))
		if err != nil {
			log.L.Warn("load report cache failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	records, err := loadAll(ctx, s.Store, &types.RecordFilter{Range: &rng, Method: method}, s.Config.Sync.PageSize)
	if err != nil {
		return nil, err
	}

	report, err := BuildReport(records, rng, method, s.loc)
	if err != nil {
		return nil, err
	}

	// 沿用读取流水之前的 generation，期间若有失效，这份结果不会再被读到
	if cacheable {
		if err := s.Cache.Store(ctx, gen, rng, string(method), report, ttl); err != nil {
			log.L.Warn("store report cache failed", zap.Error(err))
		}
	}
	return report, nil
}

// loadAll 按 id 升序翻页拉全量
func loadAll(ctx context.Context, store PaymentRecordStore, f *types.RecordFilter, pageSize int) ([]*models.PaymentRecord, error) {
	if pageSize <= 0 {
		pageSize = 500
	}
	out := make([]*models.PaymentRecord, 0)
	for page := 1; ; page++ {
		q := *f
		q.Page, q.PerPage = page, pageSize
		records, total, err := store.Find(ctx, &q)
		if err != nil {
			return nil, fmt.Errorf("find payment records page %d: %w", page, err)
		}
		out = append(out, records...)
		if len(records) < pageSize || int64(len(out)) >= total {
			return out, nil
		}
	}
}
