package service

import (
	"Reconcile/models"
	"errors"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrInvalidState    = errors.New("invalid state")
	ErrAlreadyRefunded = errors.New("payment already refunded")
	ErrInvalidRange    = errors.New("invalid range: start after end")
	ErrRecordNotFound  = models.ErrRecordNotFound
)
