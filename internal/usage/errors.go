package usage

import "errors"

// ErrLimitReached indicates the user has used today's quota.
var ErrLimitReached = errors.New("daily limit reached")
