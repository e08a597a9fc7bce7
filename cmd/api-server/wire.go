//go:build wireinject
// +build wireinject

package main

import (
	"Reconcile/config"
	"Reconcile/dao"
	"Reconcile/handler"
	"Reconcile/pkg/client"
	"Reconcile/pkg/database"
	"Reconcile/pkg/gateway"
	"Reconcile/pkg/rocketmq"
	"Reconcile/pkg/server"
	"Reconcile/service"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	client.NewRedisClient,
	database.NewDB,
	rocketmq.NewRocketmq,
	gateway.NewRouter,
	wire.Bind(new(service.GatewayResolver), new(*gateway.Router)),

	dao.ProviderSet,
	wire.Bind(new(service.PaymentRecordStore), new(*dao.PaymentRecord)),
	wire.Bind(new(service.RefundLogStore), new(*dao.RefundLog)),
	newReportCache,

	service.ProviderSet,
)

func InitServer(cfg *config.Config) (*server.AppProvider, func(), error) {
	wire.Build(
		infraSet,

		wire.Struct(new(handler.PaymentRecord), "*"),
		wire.Struct(new(handler.Reconcile), "*"),
		wire.Struct(new(handler.Refund), "*"),

		wire.Struct(new(server.Handlers), "*"),
		wire.Struct(new(server.Health), "*"),
		server.NewGinEngine,
		wire.Struct(new(server.AppProvider), "*"),
	)
	return nil, nil, nil
}

func InitJobs(cfg *config.Config) (*Jobs, func(), error) {
	wire.Build(
		infraSet,
		wire.Struct(new(Jobs), "*"),
	)
	return nil, nil, nil
}
