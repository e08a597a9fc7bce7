package cache

import (
	"Reconcile/types"
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const reportGenerationKey = "recon:report:generation"

// ReportStorage 对账报表短期缓存。
// 任一流水变更都会递增 generation，旧 key 自然失效，不做按日期范围的精确失效
type ReportStorage struct {
	redis *redis.Client
}

func NewReportStorage(rds *redis.Client) *ReportStorage {
	return &ReportStorage{redis: rds}
}

// Generation 当前失效代数，key 不存在时为 0
func (r *ReportStorage) Generation(ctx context.Context) (int64, error) {
	gen, err := r.redis.Get(ctx, reportGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *ReportStorage) Load(ctx context.Context, gen int64, rng types.DateRange, method string) (*types.ReconciliationReport, error) {
	raw, err := r.redis.Get(ctx, reportKey(gen, rng, method)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	report := &types.ReconciliationReport{}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(report); err != nil {
		return nil, err
	}
	return report, nil
}

// Store 写入调用方在读取流水前拿到的 generation 下，已失效的代数不会再被读取
func (r *ReportStorage) Store(ctx context.Context, gen int64, rng types.DateRange, method string, report *types.ReconciliationReport, ttl time.Duration) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(report); err != nil {
		return err
	}
	return r.redis.Set(ctx, reportKey(gen, rng, method), buf.Bytes(), ttl).Err()
}

func (r *ReportStorage) Invalidate(ctx context.Context) error {
	return r.redis.Incr(ctx, reportGenerationKey).Err()
}

func reportKey(gen int64, rng types.DateRange, method string) string {
	return fmt.Sprintf("recon:report:%d:%d:%d:%s", gen, rng.Start.UnixNano(), rng.End.UnixNano(), method)
}
