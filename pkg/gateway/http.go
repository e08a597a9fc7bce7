package gateway

import (
	"Reconcile/config"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Http 内部统一支付网关的 REST 适配，支付宝与银行通道都挂在它后面
//
// 响应格式: {"code": "OK", "message": "", "data": {...}}
type Http struct {
	name   string
	cfg    *config.HttpGateway
	client *http.Client
}

func NewHttp(name string, cfg *config.HttpGateway, client *http.Client) *Http {
	if client == nil {
		client = http.DefaultClient
	}
	return &Http{name: name, cfg: cfg, client: client}
}

func (h *Http) Name() string { return h.name }

func (h *Http) QueryStatus(ctx context.Context, transactionId string) (*QueryResult, error) {
	endpoint := fmt.Sprintf("%s/transactions/%s", strings.TrimRight(h.cfg.BaseURL, "/"), url.PathEscape(transactionId))
	body, err := h.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	data := gjson.GetBytes(body, "data")
	state := data.Get("trade_status").String()
	st, ok := mapHttpTradeStatus(state)
	if !ok {
		return nil, fmt.Errorf("%w: unknown trade_status %q", ErrUnavailable, state)
	}

	res := &QueryResult{
		Status: st,
		Amount: data.Get("amount").Int(),
		Raw:    state,
	}
	if ts := data.Get("success_time"); ts.Exists() && ts.String() != "" {
		if t, err := time.Parse(time.RFC3339, ts.String()); err == nil {
			res.SuccessTime = &t
		}
	}
	return res, nil
}

func (h *Http) Refund(ctx context.Context, req *RefundRequest) (*RefundResult, error) {
	payload, err := json.Marshal(map[string]any{
		"transaction_id": req.TransactionId,
		"out_refund_no":  req.RefundNo,
		"refund_amount":  req.Amount,
		"total_amount":   req.Total,
		"currency":       req.Currency,
		"reason":         req.Reason,
	})
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(h.cfg.BaseURL, "/") + "/refunds"
	body, err := h.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	refundId := gjson.GetBytes(body, "data.refund_id").String()
	if refundId == "" {
		return nil, fmt.Errorf("%w: empty refund_id", ErrUnavailable)
	}
	return &RefundResult{ConfirmationId: refundId, Raw: body}, nil
}

func (h *Http) QueryRefund(ctx context.Context, refundNo string) (RefundStatus, error) {
	endpoint := fmt.Sprintf("%s/refunds/%s", strings.TrimRight(h.cfg.BaseURL, "/"), url.PathEscape(refundNo))
	body, err := h.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	switch strings.ToUpper(gjson.GetBytes(body, "data.refund_status").String()) {
	case "SUCCESS", "REFUND_SUCCESS":
		return RefundSucceeded, nil
	case "CLOSED", "FAILED":
		return RefundClosed, nil
	}
	return RefundProcessing, nil
}

func (h *Http) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.cfg.AppKey != "" {
		req.Header.Set("X-App-Key", h.cfg.AppKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}

	code := gjson.GetBytes(body, "code").String()
	msg := gjson.GetBytes(body, "message").String()
	switch {
	case resp.StatusCode == http.StatusNotFound || code == "NOT_FOUND":
		return nil, fmt.Errorf("%w: %s", ErrNotFound, msg)
	case resp.StatusCode == http.StatusGatewayTimeout || resp.StatusCode == http.StatusRequestTimeout:
		return nil, fmt.Errorf("%w: http %d", ErrTimeout, resp.StatusCode)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: http %d %s", ErrUnavailable, resp.StatusCode, msg)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%w: http %d %s", ErrRejected, resp.StatusCode, msg)
	case code != "" && code != "OK":
		return nil, fmt.Errorf("%w: %s %s", ErrRejected, code, msg)
	}
	return body, nil
}

func mapHttpTradeStatus(state string) (Status, bool) {
	switch strings.ToUpper(state) {
	case "TRADE_SUCCESS", "TRADE_FINISHED", "SUCCESS":
		return StatusCompleted, true
	case "WAIT_BUYER_PAY", "PROCESSING", "PENDING":
		return StatusPending, true
	case "TRADE_CLOSED", "FAILED":
		return StatusFailed, true
	case "REFUND", "REFUNDED":
		return StatusRefunded, true
	}
	return "", false
}
