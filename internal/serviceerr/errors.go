package serviceerr

import "errors"

var ErrNoSession = errors.New("no stored session")
var ErrSessionExpired = errors.New("session expired")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrRegistrationDisabled = errors.New("registration is disabled")
var ErrNotFound = errors.New("not found")
