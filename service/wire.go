package service

import (
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewRecordLocker,

	wire.Struct(new(PaymentService), "*"),
	wire.Bind(new(IPaymentService), new(*PaymentService)),

	NewReportService,
	wire.Bind(new(IReportService), new(*ReportService)),

	wire.Struct(new(ExportService), "*"),
	wire.Bind(new(IExportService), new(*ExportService)),

	NewSyncService,
	wire.Bind(new(ISyncService), new(*SyncService)),

	NewRefundService,
	wire.Bind(new(IRefundService), new(*RefundService)),

	NewRefundNotifier,
)
