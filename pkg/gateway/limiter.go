package gateway

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limited 令牌桶限流，所有到网关的调用都经过这里
type Limited struct {
	Client
	limiter *rate.Limiter
}

func NewLimited(c Client, rps float64, burst int) *Limited {
	return &Limited{Client: c, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (l *Limited) QueryStatus(ctx context.Context, transactionId string) (*QueryResult, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.Client.QueryStatus(ctx, transactionId)
}

func (l *Limited) Refund(ctx context.Context, req *RefundRequest) (*RefundResult, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.Client.Refund(ctx, req)
}

func (l *Limited) QueryRefund(ctx context.Context, refundNo string) (RefundStatus, error) {
	if err := l.wait(ctx); err != nil {
		return "", err
	}
	return l.Client.QueryRefund(ctx, refundNo)
}

func (l *Limited) wait(ctx context.Context) error {
	err := l.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	// 没拿到令牌，请求未发出
	return fmt.Errorf("%w (%w): %v", ErrTimeout, ErrRejected, err)
}
