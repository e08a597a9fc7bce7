package server

import (
	"Reconcile/handler"
)

type Handlers struct {
	PaymentRecord *handler.PaymentRecord
	Reconcile     *handler.Reconcile
	Refund        *handler.Refund
}
