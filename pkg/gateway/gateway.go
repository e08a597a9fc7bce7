package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

var (
	ErrUnavailable   = errors.New("gateway unavailable")
	ErrTimeout       = errors.New("gateway timeout")
	ErrNotFound      = errors.New("gateway transaction not found")
	ErrNotConfigured = errors.New("gateway not configured")
	// ErrRejected 网关明确没有执行请求：业务拒绝，或请求根本没有发出
	ErrRejected = errors.New("gateway rejected request")
)

// Status 网关侧交易状态，取值与本地流水状态一致
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

type QueryResult struct {
	Status      Status
	Amount      int64 // 单位：分
	SuccessTime *time.Time
	Raw         string // 原始网关状态，用于日志
}

type RefundRequest struct {
	TransactionId string
	RefundNo      string // 商户退款单号，网关侧幂等键
	Amount        int64
	Total         int64
	Currency      string
	Reason        string
}

type RefundResult struct {
	ConfirmationId string
	Raw            []byte
}

type RefundStatus string

const (
	RefundSucceeded  RefundStatus = "succeeded"
	RefundProcessing RefundStatus = "processing"
	RefundClosed     RefundStatus = "closed" // 网关确认未退款或退款关闭
)

// Client 外部支付网关，调用方需自行处理限流与超时错误
type Client interface {
	Name() string
	QueryStatus(ctx context.Context, transactionId string) (*QueryResult, error)
	Refund(ctx context.Context, req *RefundRequest) (*RefundResult, error)
	// QueryRefund 按商户退款单号查询，退款单不存在时返回 ErrNotFound
	QueryRefund(ctx context.Context, refundNo string) (RefundStatus, error)
}

// Definite 错误能确定网关没有执行请求时返回 true。
// 超时、连接中断、5xx 之类的结果未知，调用方必须按"可能已执行"处理
func Definite(err error) bool {
	return errors.Is(err, ErrRejected) || errors.Is(err, ErrNotFound)
}

// classify 把传输层错误归一成网关错误
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrRejected) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
