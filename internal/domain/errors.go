package domain

import "errors"

// Sentinel errors used across all layers.
var (
	// ErrBadSchema means the source CSV is missing a required column.
	ErrBadSchema = errors.New("bad csv schema")

	// ErrTransport means the LLM endpoint was unreachable or returned a
	// non-2xx status.
	ErrTransport = errors.New("llm transport error")

	// ErrProtocol means the reply envelope carried no usable content.
	ErrProtocol = errors.New("llm protocol error")

	// ErrShape means the reply parsed as JSON but was not a results list
	// or a recognised container.
	ErrShape = errors.New("llm response shape error")

	// ErrBatchFailure means a batch exhausted its retry budget. The run
	// stops cleanly; the checkpoint log keeps everything verdicted so far.
	ErrBatchFailure = errors.New("batch failure")
)
