package domain

import "errors"

var (
	// ErrOrderNotFound — no order with the requested id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrUserNotFound — the email does not resolve to any directory user.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidOrder — the customer already ordered this product.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrOrderSave — the store rejected the save; the cause is logged, not
	// propagated to callers.
	ErrOrderSave = errors.New("failed to save order")

	// ErrDirectoryUnavailable — the upstream user directory could not be
	// fetched. Distinct from ErrUserNotFound.
	ErrDirectoryUnavailable = errors.New("user directory unavailable")
)
