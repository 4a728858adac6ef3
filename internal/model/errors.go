package model

import "errors"

// ErrSourceUnavailable marks a failure to read the comment records or to list
// origs. It is fatal to a run.
var ErrSourceUnavailable = errors.New("source unavailable")
