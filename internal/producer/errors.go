package producer

import "errors"

// ErrNoSession means no production session has been started.
var ErrNoSession = errors.New("no production session active")

// ErrNotCompleted means the episode has not finished assembling yet.
var ErrNotCompleted = errors.New("episode is not assembled yet")
