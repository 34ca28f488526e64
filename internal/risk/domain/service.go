package domain

import "errors"

var ErrNotPending = errors.New("order_not_pending")
