package handler

import (
	"Reconcile/config"
	"Reconcile/middleware"
	"Reconcile/models"
	"Reconcile/pkg/context"
	"Reconcile/pkg/response"
	"Reconcile/service"
	"Reconcile/types"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type PaymentRecord struct {
	Config         *config.Config
	PaymentService service.IPaymentService
	SyncService    service.ISyncService
	ReportService  service.IReportService
}

func (p *PaymentRecord) RegisterRouter(r gin.IRouter) {
	authorize := middleware.Auth([]byte(p.Config.Jwt.Secret))
	records := r.Group("/payment-records")
	records.Use(authorize)
	records.GET("", context.Wrap(p.List))
	records.POST("/:id/sync", context.Wrap(p.Sync))
	records.POST("/batch-sync", context.Wrap(p.BatchSync)) // 批量同步网关状态
}

func (p *PaymentRecord) List(c *gin.Context) error {
	var req types.ListRecordsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		return badRequest(err)
	}

	filter := &types.RecordFilter{Page: req.Page, PerPage: req.PerPage}
	if req.Start != "" || req.End != "" {
		if req.Start == "" || req.End == "" {
			return badRequest(fmt.Errorf("start 和 end 需要同时指定"))
		}
		rng, err := service.ParseRange(req.Start, req.End, p.ReportService.Location())
		if err != nil {
			return bizError(err)
		}
		filter.Range = &rng
	}
	method, err := service.NormalizeMethod(req.Method)
	if err != nil {
		return bizError(err)
	}
	filter.Method = method
	filter.Status = normalizeStatus(req.Status)

	resp, err := p.PaymentService.List(c.Request.Context(), filter)
	if err != nil {
		return bizError(err)
	}
	response.Success(c, resp)
	return nil
}

func (p *PaymentRecord) Sync(c *gin.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return response.NewError(400, "id 不合法")
	}

	resp, err := p.SyncService.SyncOne(c.Request.Context(), id)
	if err != nil {
		return bizError(err)
	}
	response.Success(c, resp)
	return nil
}

// BatchSync 部分失败仍返回 200，失败明细在 failures 中
func (p *PaymentRecord) BatchSync(c *gin.Context) error {
	var req types.BatchSyncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return badRequest(err)
	}

	rng, err := service.ParseRange(req.Start, req.End, p.ReportService.Location())
	if err != nil {
		return bizError(err)
	}
	method, err := service.NormalizeMethod(req.Method)
	if err != nil {
		return bizError(err)
	}

	result, err := p.SyncService.Run(c.Request.Context(), &types.BatchSyncRequest{
		Range:  rng,
		Method: method,
		Status: normalizeStatus(req.Status),
	})
	if err != nil {
		return bizError(err)
	}
	response.Success(c, result)
	return nil
}

func normalizeStatus(s string) models.PayStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "all" {
		return ""
	}
	return models.PayStatus(s)
}
