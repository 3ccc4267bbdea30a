package engine

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrNotOwner           = errors.New("order does not belong to requester")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrPersistence        = errors.New("persistence failure")
)
