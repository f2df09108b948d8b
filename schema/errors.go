package schema

import (
	"errors"
)

var (
	// validation
	ErrEmptyName    = errors.New("null_name")
	ErrNameTooLong  = errors.New("name_too_long")
	ErrDataTooLong  = errors.New("data_too_long")
	ErrNullAddress  = errors.New("null_address")
	ErrSelfTransfer = errors.New("transfer_to_self")
	ErrBadAmount    = errors.New("invalid_amount")

	// authorization
	ErrNotOwner = errors.New("caller_not_owner")
	ErrNotAdmin = errors.New("caller_not_admin")
	ErrBadSig   = errors.New("invalid_signature")
	ErrStaleSig = errors.New("stale_signature")

	// conflict
	ErrNameRegistered = errors.New("name_already_registered")

	// economic
	ErrInsufficientPayment = errors.New("insufficient_payment")
	ErrInsufficientFunds   = errors.New("insufficient_funds")
	ErrZeroBalance         = errors.New("null_balance")

	// availability; "try again later", unlike the validation errors above
	ErrRegistryPaused    = errors.New("registry_paused")
	ErrRegistryNotPaused = errors.New("registry_not_paused")
	ErrReentrantCall     = errors.New("reentrant_call")

	// storage
	ErrNotExist     = errors.New("not_exist_record")
	ErrNotFound     = errors.New("not_found")
	ErrExist        = errors.New("s3_bucket_exist")
	ErrNotImplement = errors.New("method not implement")
)
