package handler

import (
	"Reconcile/config"
	"Reconcile/middleware"
	"Reconcile/models"
	"Reconcile/pkg/context"
	"Reconcile/pkg/log"
	"Reconcile/pkg/money"
	"Reconcile/pkg/response"
	"Reconcile/service"
	"Reconcile/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Refund struct {
	Config         *config.Config
	PaymentService service.IPaymentService
	RefundService  service.IRefundService
}

func (h *Refund) RegisterRouter(r gin.IRouter) {
	authorize := middleware.Auth([]byte(h.Config.Jwt.Secret))
	orders := r.Group("/orders")
	orders.Use(authorize)
	orders.POST("/:id/refund", context.Wrap(h.Refund))
}

// Refund :id 为订单号
func (h *Refund) Refund(c *gin.Context) error {
	var req types.RefundReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return badRequest(err)
	}

	ctx := c.Request.Context()
	record, err := h.PaymentService.GetByOrderSn(ctx, c.Param("id"))
	if err != nil {
		return bizError(err)
	}

	currency := req.Currency
	if currency == "" {
		currency = record.Currency
	}
	adminId, _ := context.GetAdminID(c)

	result, err := h.RefundService.Refund(ctx, &types.RefundRequest{
		RecordId:    record.Id,
		Amount:      money.New(req.Amount.Cents, currency),
		Reason:      models.RefundReason(req.Reason),
		Description: req.Description,
		AuditNotes:  req.AuditNotes,
	})
	if err != nil {
		return bizError(err)
	}

	log.L.Info("refund accepted",
		zap.Uint64("admin_id", adminId),
		zap.String("order_sn", record.OrderSn),
		zap.String("refund_no", result.RefundNo),
		zap.String("mode", result.Mode),
	)
	response.Success(c, result)
	return nil
}
