package main

import (
	"Reconcile/config"
	"Reconcile/dao/cache"
	"Reconcile/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Jobs 命令行任务复用的服务集合
type Jobs struct {
	DB            *gorm.DB
	SyncService   service.ISyncService
	RefundService service.IRefundService
	ReportService service.IReportService
}

// newReportCache 未配置 redis 或 ttl 为 0 时不缓存
func newReportCache(conf *config.Config, rds *redis.Client) service.ReportCache {
	if rds == nil || conf.Reconcile.CacheTTL <= 0 {
		return service.NopReportCache{}
	}
	return cache.NewReportStorage(rds)
}
