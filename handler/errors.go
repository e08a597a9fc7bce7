package handler

import (
	"Reconcile/pkg/gateway"
	"Reconcile/pkg/log"
	"Reconcile/pkg/response"
	"Reconcile/service"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// bizError 把领域错误映射为 HTTP 语义的业务错误，未知错误不向调用方暴露细节
func bizError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidRange):
		return response.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrRecordNotFound):
		return response.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyRefunded), errors.Is(err, service.ErrInvalidState):
		return response.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, gateway.ErrNotFound):
		return response.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, gateway.ErrTimeout):
		return response.NewError(http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, gateway.ErrUnavailable), errors.Is(err, gateway.ErrRejected):
		return response.NewError(http.StatusBadGateway, err.Error())
	case errors.Is(err, gateway.ErrNotConfigured):
		return response.NewError(http.StatusServiceUnavailable, err.Error())
	}
	log.L.Error("unexpected error", zap.Error(err))
	return response.NewError(http.StatusInternalServerError, "服务内部错误")
}

func badRequest(err error) error {
	return response.NewError(http.StatusBadRequest, err.Error())
}
