package app

import "errors"

// ErrInvalidDeleteMatch reports an unknown delete matching mode.
var ErrInvalidDeleteMatch = errors.New("invalid delete match")
