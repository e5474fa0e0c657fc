package stableswap

import "errors"

var (
	ErrInvalidTokenCount         = errors.New("token count out of range")
	ErrBalanceMultiplierMismatch = errors.New("balances must match multipliers")
	ErrDuplicateToken            = errors.New("duplicate token")
	ErrZeroAddressToken          = errors.New("token address is zero")
	ErrDecimalsExceedMax         = errors.New("token decimals exceed pool precision")
	ErrTokenIndexOutOfRange      = errors.New("token index out of range")
	ErrSameTokenIndex            = errors.New("cannot swap token to itself")
	ErrConvergenceD              = errors.New("invariant D does not converge")
	ErrConvergenceY              = errors.New("approximation of y does not converge")
	ErrArithmeticUnderflow       = errors.New("arithmetic underflow")
	ErrArithmeticOverflow        = errors.New("arithmetic overflow")
	ErrDivisionByZero            = errors.New("division by zero")
	ErrFeeExceedsMax             = errors.New("fee exceeds maximum")
)
