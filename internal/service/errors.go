package service

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrProviderNotFound    = errors.New("provider not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrEmailTaken          = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrOTPNotFound         = errors.New("otp expired or not generated")
	ErrOTPInvalid          = errors.New("otp invalid")
	ErrResetSessionExpired = errors.New("password reset session expired")
	ErrDuplicateReview     = errors.New("reviewer already rated this provider")
	ErrProviderExists      = errors.New("provider id already exists")
	ErrEmailSendFailure    = errors.New("email send failed")
	ErrInvalidInput        = errors.New("invalid input")
	ErrRateLimited         = errors.New("rate limited")
)
