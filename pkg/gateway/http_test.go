package gateway

import (
	"Reconcile/config"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHttp(t *testing.T, h http.HandlerFunc) *Http {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHttp("alipay", &config.HttpGateway{BaseURL: srv.URL, AppKey: "k"}, srv.Client())
}

func TestHttp_QueryStatus(t *testing.T) {
	gw := newTestHttp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions/T100", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("X-App-Key"))
		_, _ = w.Write([]byte(`{"code":"OK","data":{"trade_status":"TRADE_SUCCESS","amount":10000,"success_time":"2026-03-01T10:00:00+08:00"}}`))
	})

	res, err := gw.QueryStatus(context.Background(), "T100")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, int64(10000), res.Amount)
	require.NotNil(t, res.SuccessTime)
	assert.Equal(t, 2, res.SuccessTime.UTC().Hour())
}

func TestHttp_QueryStatus_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		gw := newTestHttp(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"NOT_FOUND","message":"no such trade"}`))
		})
		_, err := gw.QueryStatus(context.Background(), "T1")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		gw := newTestHttp(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		_, err := gw.QueryStatus(context.Background(), "T1")
		require.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("business error code", func(t *testing.T) {
		gw := newTestHttp(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":"SYSTEM_BUSY","message":"try later"}`))
		})
		_, err := gw.QueryStatus(context.Background(), "T1")
		require.ErrorIs(t, err, ErrRejected)
	})

	t.Run("unknown status", func(t *testing.T) {
		gw := newTestHttp(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":"OK","data":{"trade_status":"WHATEVER"}}`))
		})
		_, err := gw.QueryStatus(context.Background(), "T1")
		require.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		gw := newTestHttp(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := gw.QueryStatus(ctx, "T1")
		require.ErrorIs(t, err, ErrTimeout)
	})
}

func TestHttp_Refund(t *testing.T) {
	gw := newTestHttp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/refunds", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "T9", body["transaction_id"])
		assert.Equal(t, "RF1", body["out_refund_no"])
		assert.EqualValues(t, 5000, body["refund_amount"])

		_, _ = w.Write([]byte(`{"code":"OK","data":{"refund_id":"R-777"}}`))
	})

	res, err := gw.Refund(context.Background(), &RefundRequest{
		TransactionId: "T9", RefundNo: "RF1", Amount: 5000, Total: 10000, Currency: "CNY",
	})
	require.NoError(t, err)
	assert.Equal(t, "R-777", res.ConfirmationId)
}

// 只有网关明确拒绝时才能判定退款未执行
func TestHttp_Refund_ErrorOutcome(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		want     error
		definite bool
	}{
		{"bad request", http.StatusBadRequest, `{"code":"INVALID_AMOUNT","message":"refund exceeds total"}`, ErrRejected, true},
		{"business code", http.StatusOK, `{"code":"TRADE_CLOSED","message":"closed"}`, ErrRejected, true},
		{"server error", http.StatusInternalServerError, `{"code":"SYSTEM_ERROR"}`, ErrUnavailable, false},
		{"gateway timeout", http.StatusGatewayTimeout, ``, ErrTimeout, false},
		{"missing refund id", http.StatusOK, `{"code":"OK","data":{}}`, ErrUnavailable, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := newTestHttp(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := gw.Refund(context.Background(), &RefundRequest{TransactionId: "T9", RefundNo: "RF1", Amount: 1, Total: 1})
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.definite, Definite(err))
		})
	}

	t.Run("transport timeout", func(t *testing.T) {
		release := make(chan struct{})
		gw := newTestHttp(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := gw.Refund(ctx, &RefundRequest{TransactionId: "T9", RefundNo: "RF1", Amount: 1, Total: 1})
		require.ErrorIs(t, err, ErrTimeout)
		assert.False(t, Definite(err))
	})
}

func TestLimited_NoTokenIsDefinite(t *testing.T) {
	var calls int32
	gw := newTestHttp(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"code":"OK","data":{"refund_id":"R-1"}}`))
	})
	l := NewLimited(gw, 0.001, 1)
	req := &RefundRequest{TransactionId: "T9", RefundNo: "RF1", Amount: 1, Total: 1}

	_, err := l.Refund(context.Background(), req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Refund(ctx, req)
	require.ErrorIs(t, err, ErrTimeout)
	assert.True(t, Definite(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHttp_QueryRefund(t *testing.T) {
	statuses := map[string]string{"RF1": "SUCCESS", "RF2": "PROCESSING", "RF3": "CLOSED"}
	gw := newTestHttp(t, func(w http.ResponseWriter, r *http.Request) {
		no := r.URL.Path[len("/refunds/"):]
		st, ok := statuses[no]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"code":"OK","data":{"refund_status":"` + st + `"}}`))
	})

	ctx := context.Background()
	st, err := gw.QueryRefund(ctx, "RF1")
	require.NoError(t, err)
	assert.Equal(t, RefundSucceeded, st)

	st, err = gw.QueryRefund(ctx, "RF2")
	require.NoError(t, err)
	assert.Equal(t, RefundProcessing, st)

	st, err = gw.QueryRefund(ctx, "RF3")
	require.NoError(t, err)
	assert.Equal(t, RefundClosed, st)

	_, err = gw.QueryRefund(ctx, "RF4")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMapTradeStates(t *testing.T) {
	st, ok := mapWechatTradeState("REFUND")
	assert.True(t, ok)
	assert.Equal(t, StatusRefunded, st)

	st, ok = mapWechatTradeState("USERPAYING")
	assert.True(t, ok)
	assert.Equal(t, StatusPending, st)

	assert.Equal(t, RefundProcessing, mapWechatRefundStatus("ABNORMAL"))
	assert.Equal(t, RefundClosed, mapWechatRefundStatus("CLOSED"))

	_, ok = mapWechatTradeState("???")
	assert.False(t, ok)

	st, ok = mapHttpTradeStatus("trade_closed")
	assert.True(t, ok)
	assert.Equal(t, StatusFailed, st)
}

func TestRouter(t *testing.T) {
	gw := NewHttp("bank", &config.HttpGateway{BaseURL: "http://example"}, nil)
	r := NewStaticRouter(map[string]Client{"bank": gw})

	assert.Same(t, gw, r.For("bank"))
	assert.Nil(t, r.For("wechat"))
	assert.Equal(t, []string{"bank"}, r.Methods())

	var nilRouter *Router
	assert.Nil(t, nilRouter.For("bank"))
}
