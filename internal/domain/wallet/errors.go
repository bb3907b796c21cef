package wallet

import "errors"

var (
	ErrWalletNotFound      = errors.New("doctor wallet not found")
	ErrRequestNotFound     = errors.New("withdraw request not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyCompleted    = errors.New("withdraw already completed")
	ErrProofRequired       = errors.New("proof image required")
	ErrInvalidStatus       = errors.New("invalid withdraw status")
	ErrInvalidAmount       = errors.New("invalid withdraw amount")
)
