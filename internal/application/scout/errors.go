package scout

import "errors"

var (
	// ErrNoData marks an empty or unreachable corpus. The caller answers
	// without a model call; zero matches is not this condition.
	ErrNoData = errors.New("no prospect data available")

	// ErrEmbedding marks a failed query embedding call.
	ErrEmbedding = errors.New("query embedding failed")

	// ErrCompletion marks a chat model failure after retry.
	ErrCompletion = errors.New("chat completion failed")
)
