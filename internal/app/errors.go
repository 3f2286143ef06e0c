package service

import "errors"

// ErrInconsistentPage is returned when the backend's page count cannot be
// reconciled with its record count or exceeds the fetch ceiling.
var ErrInconsistentPage = errors.New("inconsistent pagination from backend")
