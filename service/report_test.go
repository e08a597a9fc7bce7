package service

import (
	"Reconcile/dao/memory"
	"Reconcile/models"
	"Reconcile/types"
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport_Scenario(t *testing.T) {
	records := []*models.PaymentRecord{
		newRecord(1, 10000, models.MethodAlipay, models.StatusCompleted, day1),
		newRecord(2, 5000, models.MethodWechat, models.StatusFailed, day1),
		newRecord(3, 20000, models.MethodAlipay, models.StatusCompleted, day2),
	}

	report, err := BuildReport(records, fullRange, "", time.UTC)
	require.NoError(t, err)

	s := report.Summary
	assert.Equal(t, int64(3), s.TotalCount)
	assert.Equal(t, "350.00", s.TotalAmount.String())
	assert.Equal(t, int64(2), s.Completed.Count)
	assert.Equal(t, "300.00", s.Completed.Amount.String())
	assert.Equal(t, int64(1), s.Failed.Count)
	assert.Equal(t, "50.00", s.Failed.Amount.String())
	assert.Equal(t, int64(0), s.Refunded.Count)
	assert.Equal(t, "all", report.MethodFilter)
	assert.Equal(t, "CNY", report.Currency)

	require.Len(t, report.MethodBreakdown, 2)
	alipay, wechat := report.MethodBreakdown[0], report.MethodBreakdown[1]
	assert.Equal(t, models.MethodAlipay, alipay.Method)
	assert.Equal(t, int64(2), alipay.Count)
	assert.Equal(t, "300.00", alipay.Amount.String())
	assert.Equal(t, 100.0, alipay.SuccessRate)
	assert.Equal(t, models.MethodWechat, wechat.Method)
	assert.Equal(t, int64(1), wechat.Count)
	assert.Equal(t, "50.00", wechat.Amount.String())
	assert.Equal(t, 0.0, wechat.SuccessRate)

	require.Len(t, report.DailyBreakdown, 2)
	assert.Equal(t, "2024-03-01", report.DailyBreakdown[0].Date)
	assert.Equal(t, int64(2), report.DailyBreakdown[0].Count)
	assert.Equal(t, int64(1), report.DailyBreakdown[0].SuccessCount)
	assert.Equal(t, int64(1), report.DailyBreakdown[0].FailedCount)
	assert.Equal(t, "50.00", report.DailyBreakdown[0].FailedAmount.String())
	assert.Equal(t, "2024-03-02", report.DailyBreakdown[1].Date)
	assert.Equal(t, "200.00", report.DailyBreakdown[1].SuccessAmount.String())
}

func randomRecords(n int, seed int64) []*models.PaymentRecord {
	rnd := rand.New(rand.NewSource(seed))
	statuses := []models.PayStatus{models.StatusPending, models.StatusCompleted, models.StatusFailed, models.StatusRefunded}
	out := make([]*models.PaymentRecord, 0, n)
	for i := 0; i < n; i++ {
		created := fullRange.Start.Add(time.Duration(rnd.Int63n(int64(90 * 24 * time.Hour))))
		out = append(out, newRecord(
			uint64(i+1),
			rnd.Int63n(100000)+1,
			models.Methods[rnd.Intn(len(models.Methods))],
			statuses[rnd.Intn(len(statuses))],
			created,
		))
	}
	return out
}

func TestBuildReport_TotalsAgree(t *testing.T) {
	records := randomRecords(5000, 7)
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	for _, method := range []models.PayMethod{"", models.MethodAlipay, models.MethodWechat, models.MethodBank} {
		report, err := BuildReport(records, fullRange, method, loc)
		require.NoError(t, err)

		var mCount, mAmount, dCount, dAmount int64
		for _, m := range report.MethodBreakdown {
			mCount += m.Count
			mAmount += m.Amount.Cents
		}
		prev := ""
		for _, d := range report.DailyBreakdown {
			assert.Greater(t, d.Date, prev, "daily breakdown must be strictly ascending")
			prev = d.Date
			dCount += d.Count
			dAmount += d.Amount.Cents
		}
		s := report.Summary
		assert.Equal(t, s.TotalCount, mCount)
		assert.Equal(t, s.TotalCount, dCount)
		assert.Equal(t, s.TotalAmount.Cents, mAmount)
		assert.Equal(t, s.TotalAmount.Cents, dAmount)
		assert.Equal(t, s.TotalCount, s.Pending.Count+s.Completed.Count+s.Failed.Count+s.Refunded.Count)
	}
}

func TestBuildReport_Deterministic(t *testing.T) {
	records := randomRecords(500, 11)
	first, err := BuildReport(records, fullRange, "", time.UTC)
	require.NoError(t, err)
	a, err := json.Marshal(first)
	require.NoError(t, err)

	shuffled := append([]*models.PaymentRecord(nil), records...)
	rand.New(rand.NewSource(3)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	for _, input := range [][]*models.PaymentRecord{records, shuffled} {
		again, err := BuildReport(input, fullRange, "", time.UTC)
		require.NoError(t, err)
		b, err := json.Marshal(again)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	}
}

func TestBuildReport_EmptyAndFiltered(t *testing.T) {
	report, err := BuildReport(nil, fullRange, "", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Summary.TotalCount)
	assert.Equal(t, "0.00", report.Summary.TotalAmount.String())
	assert.Empty(t, report.MethodBreakdown)
	assert.Empty(t, report.DailyBreakdown)

	outside := newRecord(1, 100, models.MethodBank, models.StatusCompleted, fullRange.End.Add(time.Second))
	edge := newRecord(2, 200, models.MethodBank, models.StatusCompleted, fullRange.End)
	other := newRecord(3, 300, models.MethodAlipay, models.StatusCompleted, day1)
	report, err = BuildReport([]*models.PaymentRecord{outside, edge, other}, fullRange, models.MethodBank, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "bank", report.MethodFilter)
	assert.Equal(t, int64(1), report.Summary.TotalCount)
	assert.Equal(t, int64(200), report.Summary.TotalAmount.Cents)
}

func TestBuildReport_InvalidRange(t *testing.T) {
	_, err := BuildReport(nil, types.DateRange{Start: day2, End: day1}, "", time.UTC)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestBuildReport_MixedCurrency(t *testing.T) {
	usd := newRecord(2, 100, models.MethodBank, models.StatusCompleted, day1)
	usd.Currency = "USD"
	_, err := BuildReport([]*models.PaymentRecord{
		newRecord(1, 100, models.MethodBank, models.StatusCompleted, day1),
		usd,
	}, fullRange, "", time.UTC)
	require.ErrorIs(t, err, ErrValidation)
}

// 同一时刻在不同时区可能落在不同日期，报表按配置时区切日
func TestBuildReport_ReportingTimezone(t *testing.T) {
	late := time.Date(2024, 3, 1, 17, 30, 0, 0, time.UTC)
	records := []*models.PaymentRecord{newRecord(1, 100, models.MethodWechat, models.StatusCompleted, late)}

	utc, err := BuildReport(records, fullRange, "", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", utc.DailyBreakdown[0].Date)

	sh, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	cn, err := BuildReport(records, fullRange, "", sh)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", cn.DailyBreakdown[0].Date)
	assert.Equal(t, "Asia/Shanghai", cn.Timezone)
}

func TestSuccessRate(t *testing.T) {
	cases := []struct {
		success, total int64
		want           float64
	}{
		{0, 0, 0},
		{0, 5, 0},
		{5, 5, 100},
		{2, 3, 66.7},
		{1, 3, 33.3},
		{1, 8, 12.5},
		{1, 16, 6.3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, successRate(tc.success, tc.total), "%d/%d", tc.success, tc.total)
	}
}

func TestParseRange(t *testing.T) {
	sh, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	rng, err := ParseRange("2024-03-01", "2024-03-01", sh)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 3, 1, 0, 0, 0, 0, sh).Equal(rng.Start))
	assert.True(t, rng.Contains(time.Date(2024, 3, 1, 23, 59, 59, 0, sh)))
	assert.False(t, rng.Contains(time.Date(2024, 3, 2, 0, 0, 0, 0, sh)))

	rng, err = ParseRange("2024-03-01T00:00:00Z", "2024-03-02T00:00:00Z", sh)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, rng.End.Sub(rng.Start))

	_, err = ParseRange("2024-03-02", "2024-03-01", sh)
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = ParseRange("03/01/2024", "2024-03-01", sh)
	require.ErrorIs(t, err, ErrValidation)
}

func TestNormalizeMethod(t *testing.T) {
	m, err := NormalizeMethod("all")
	require.NoError(t, err)
	assert.Equal(t, models.PayMethod(""), m)

	m, err = NormalizeMethod(" WeChat ")
	require.NoError(t, err)
	assert.Equal(t, models.MethodWechat, m)

	_, err = NormalizeMethod("paypal")
	require.ErrorIs(t, err, ErrValidation)
}

func TestReportService_Generate(t *testing.T) {
	store := memory.NewStore(randomRecords(20, 5)...)
	cache := newCountingCache()
	conf := testConfig()
	conf.Reconcile.CacheTTL = time.Minute

	svc, err := NewReportService(conf, store, cache)
	require.NoError(t, err)

	ctx := context.Background()
	report, err := svc.Generate(ctx, fullRange, "")
	require.NoError(t, err)
	// 页大小为 3，需要翻页才能拿到全部记录
	assert.Equal(t, int64(20), report.Summary.TotalCount)

	again, err := svc.Generate(ctx, fullRange, "")
	require.NoError(t, err)
	assert.Same(t, report, again, "second call should be served from cache")

	_, err = svc.Generate(ctx, types.DateRange{Start: day2, End: day1}, "")
	require.ErrorIs(t, err, ErrInvalidRange)
}

// 构建报表期间发生的变更使写入的结果失效，下一次读到的是新数据
func TestReportService_InvalidatedWhileBuilding(t *testing.T) {
	store := memory.NewStore(randomRecords(20, 5)...)
	cache := newCountingCache()
	conf := testConfig()
	conf.Reconcile.CacheTTL = time.Minute

	svc, err := NewReportService(conf, store, cache)
	require.NoError(t, err)
	ctx := context.Background()

	var once sync.Once
	cache.beforeStore = func() {
		once.Do(func() {
			_, err := store.Update(ctx, 1, func(r *models.PaymentRecord) error {
				r.Amount += 100
				return nil
			})
			require.NoError(t, err)
			require.NoError(t, cache.Invalidate(ctx))
		})
	}

	stale, err := svc.Generate(ctx, fullRange, "")
	require.NoError(t, err)

	fresh, err := svc.Generate(ctx, fullRange, "")
	require.NoError(t, err)
	assert.NotSame(t, stale, fresh)
	assert.Equal(t, stale.Summary.TotalAmount.Cents+100, fresh.Summary.TotalAmount.Cents)

	cached, err := svc.Generate(ctx, fullRange, "")
	require.NoError(t, err)
	assert.Same(t, fresh, cached)
}

func TestNewReportService_BadTimezone(t *testing.T) {
	conf := testConfig()
	conf.Reconcile.Timezone = "Mars/Olympus"
	_, err := NewReportService(conf, memory.NewStore(), nil)
	require.Error(t, err)
}
