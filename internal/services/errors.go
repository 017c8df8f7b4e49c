package services

import "errors"

// ErrHistoryDisabled is returned by history lookups when no store is configured
var ErrHistoryDisabled = errors.New("run history is disabled")
