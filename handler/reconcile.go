package handler

import (
	"Reconcile/config"
	"Reconcile/middleware"
	"Reconcile/pkg/context"
	"Reconcile/pkg/response"
	"Reconcile/service"
	"Reconcile/types"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Reconcile struct {
	Config        *config.Config
	ReportService service.IReportService
	ExportService service.IExportService
}

func (h *Reconcile) RegisterRouter(r gin.IRouter) {
	authorize := middleware.Auth([]byte(h.Config.Jwt.Secret))
	report := r.Group("/reconciliation-report")
	report.Use(authorize)
	report.POST("", context.Wrap(h.Report))
	report.POST("/export", context.Wrap(h.Export))
}

func (h *Reconcile) Report(c *gin.Context) error {
	var req types.ReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return badRequest(err)
	}
	rng, err := service.ParseRange(req.Start, req.End, h.ReportService.Location())
	if err != nil {
		return bizError(err)
	}
	method, err := service.NormalizeMethod(req.Method)
	if err != nil {
		return bizError(err)
	}

	report, err := h.ReportService.Generate(c.Request.Context(), rng, method)
	if err != nil {
		return bizError(err)
	}
	response.Success(c, report)
	return nil
}

// Export 以附件形式返回 xlsx 或 csv
func (h *Reconcile) Export(c *gin.Context) error {
	var req types.ExportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return badRequest(err)
	}
	rng, err := service.ParseRange(req.Start, req.End, h.ReportService.Location())
	if err != nil {
		return bizError(err)
	}
	method, err := service.NormalizeMethod(req.Method)
	if err != nil {
		return bizError(err)
	}

	file, err := h.ExportService.Export(c.Request.Context(), rng, method, req.Format)
	if err != nil {
		return bizError(err)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
	return nil
}
