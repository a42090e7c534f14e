package session

import "errors"

// Sentinel errors for session actions
var (
	ErrNoList = errors.New("no item list loaded")
)
