package gateway

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wechatpay-apiv3/wechatpay-go/core"
)

func TestCheckWechatRefundAccepted(t *testing.T) {
	require.NoError(t, checkWechatRefundAccepted("SUCCESS"))
	require.NoError(t, checkWechatRefundAccepted("PROCESSING"))

	err := checkWechatRefundAccepted("CLOSED")
	require.ErrorIs(t, err, ErrRejected)
	assert.True(t, Definite(err))

	for _, st := range []string{"ABNORMAL", ""} {
		err := checkWechatRefundAccepted(st)
		require.ErrorIs(t, err, ErrUnavailable)
		assert.False(t, Definite(err), st)
	}
}

func TestWechatError(t *testing.T) {
	err := wechatError(&core.APIError{StatusCode: http.StatusBadRequest, Code: "NOT_ENOUGH", Message: "余额不足"})
	require.ErrorIs(t, err, ErrRejected)

	err = wechatError(&core.APIError{StatusCode: http.StatusInternalServerError, Code: "SYSTEM_ERROR"})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, Definite(err))

	err = wechatError(&core.APIError{StatusCode: http.StatusNotFound, Code: "RESOURCE_NOT_EXISTS"})
	require.ErrorIs(t, err, ErrNotFound)
}
