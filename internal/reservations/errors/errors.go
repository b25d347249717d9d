package errors

import "errors"

var (
	ErrWindowClosed = errors.New("booking window is closed")

	ErrOutOfRange = errors.New("slot is outside the reservable range")

	ErrMissingFields = errors.New("name and passphrase are required")

	ErrSlotTaken = errors.New("slot is already reserved")

	ErrQuotaExceeded = errors.New("weekly quota for restricted slots reached")

	ErrSlotEmpty = errors.New("slot has no reservation")

	ErrWrongPassphrase = errors.New("passphrase does not match")

	ErrUnknownTime = errors.New("time is not one of the configured slot times")

	ErrInvalidDate = errors.New("invalid date format")

	ErrEmptyExport = errors.New("no reservations in the reservable range")

	ErrAdminDisabled = errors.New("admin access is not configured")

	ErrWrongSecret = errors.New("admin secret does not match")
)
