package gateway

import (
	"Reconcile/config"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/jsapi"
	"github.com/wechatpay-apiv3/wechatpay-go/services/refunddomestic"
	"github.com/wechatpay-apiv3/wechatpay-go/utils"
)

// Wechat 微信支付 APIv3
type Wechat struct {
	cfg    *config.WechatPayConfig
	client *core.Client
}

func NewWechat(ctx context.Context, cfg *config.WechatPayConfig) (*Wechat, error) {
	mchPrivateKey, err := utils.LoadPrivateKeyWithPath(cfg.MchPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("加载商户私钥失败: %w", err)
	}

	opts := []core.ClientOption{
		option.WithWechatPayAutoAuthCipher(
			cfg.MchID,
			cfg.MchCertificateSerialNumber,
			mchPrivateKey,
			cfg.MchAPIv3Key,
		),
	}
	client, err := core.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("创建微信支付客户端失败: %w", err)
	}

	return &Wechat{cfg: cfg, client: client}, nil
}

func (w *Wechat) Name() string { return "wechat" }

func (w *Wechat) QueryStatus(ctx context.Context, transactionId string) (*QueryResult, error) {
	svc := jsapi.JsapiApiService{Client: w.client}
	resp, _, err := svc.QueryOrderById(ctx, jsapi.QueryOrderByIdRequest{
		TransactionId: core.String(transactionId),
		Mchid:         core.String(w.cfg.MchID),
	})
	if err != nil {
		return nil, wechatError(err)
	}

	state := ""
	if resp.TradeState != nil {
		state = *resp.TradeState
	}
	st, ok := mapWechatTradeState(state)
	if !ok {
		return nil, fmt.Errorf("%w: unknown trade_state %q", ErrUnavailable, state)
	}

	res := &QueryResult{Status: st, Raw: state}
	if resp.Amount != nil && resp.Amount.Total != nil {
		res.Amount = *resp.Amount.Total
	}
	if resp.SuccessTime != nil {
		if t, err := time.Parse(time.RFC3339, *resp.SuccessTime); err == nil {
			res.SuccessTime = &t
		}
	}
	return res, nil
}

func (w *Wechat) Refund(ctx context.Context, req *RefundRequest) (*RefundResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = "CNY"
	}
	create := refunddomestic.CreateRequest{
		TransactionId: core.String(req.TransactionId),
		OutRefundNo:   core.String(req.RefundNo),
		Amount: &refunddomestic.AmountReq{
			Currency: core.String(currency),
			Refund:   core.Int64(req.Amount),
			Total:    core.Int64(req.Total),
		},
	}
	if req.Reason != "" {
		create.Reason = core.String(req.Reason)
	}
	if w.cfg.RefundNotifyURL != "" {
		create.NotifyUrl = core.String(w.cfg.RefundNotifyURL)
	}

	svc := refunddomestic.RefundsApiService{Client: w.client}
	resp, _, err := svc.Create(ctx, create)
	if err != nil {
		return nil, wechatError(err)
	}

	status := ""
	if resp.Status != nil {
		status = string(*resp.Status)
	}
	if err := checkWechatRefundAccepted(status); err != nil {
		return nil, err
	}

	raw, _ := json.Marshal(resp)
	res := &RefundResult{Raw: raw}
	if resp.RefundId != nil {
		res.ConfirmationId = *resp.RefundId
	}
	return res, nil
}

func (w *Wechat) QueryRefund(ctx context.Context, refundNo string) (RefundStatus, error) {
	svc := refunddomestic.RefundsApiService{Client: w.client}
	resp, _, err := svc.QueryByOutRefundNo(ctx, refunddomestic.QueryByOutRefundNoRequest{
		OutRefundNo: core.String(refundNo),
	})
	if err != nil {
		return "", wechatError(err)
	}
	if resp.Status == nil {
		return "", fmt.Errorf("%w: empty refund status", ErrUnavailable)
	}
	return mapWechatRefundStatus(string(*resp.Status)), nil
}

// checkWechatRefundAccepted 申请退款的同步状态：SUCCESS、PROCESSING 表示已受理，
// CLOSED 为明确未退款，ABNORMAL 或缺失时结果不明，留给退款单复核
func checkWechatRefundAccepted(status string) error {
	switch mapWechatRefundStatus(status) {
	case RefundSucceeded:
		return nil
	case RefundClosed:
		return fmt.Errorf("%w: refund status %s", ErrRejected, status)
	}
	if status == "PROCESSING" {
		return nil
	}
	return fmt.Errorf("%w: refund status %q", ErrUnavailable, status)
}

func mapWechatRefundStatus(status string) RefundStatus {
	switch status {
	case "SUCCESS":
		return RefundSucceeded
	case "CLOSED":
		return RefundClosed
	}
	// PROCESSING、ABNORMAL 需要人工或下一轮复核
	return RefundProcessing
}

func mapWechatTradeState(state string) (Status, bool) {
	switch state {
	case "SUCCESS":
		return StatusCompleted, true
	case "REFUND":
		return StatusRefunded, true
	case "NOTPAY", "USERPAYING":
		return StatusPending, true
	case "CLOSED", "REVOKED", "PAYERROR":
		return StatusFailed, true
	}
	return "", false
}

func wechatError(err error) error {
	if core.IsAPIError(err, "ORDER_NOT_EXIST") || core.IsAPIError(err, "RESOURCE_NOT_EXISTS") {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if apiErr, ok := err.(*core.APIError); ok {
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case apiErr.StatusCode >= http.StatusInternalServerError:
			// SYSTEM_ERROR 等，微信侧可能已受理
			return fmt.Errorf("%w: %s %s", ErrUnavailable, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("%w: %s %s", ErrRejected, apiErr.Code, apiErr.Message)
	}
	return classify(err)
}
