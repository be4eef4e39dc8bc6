package search

import "errors"

// ErrNoValidCandidate names validation exhaustion per spec.md §7: Run's
// candidate set is empty. Run itself returns an empty slice rather than
// this error, and internal/engine reports the condition with its own
// engine.ErrNoValidCandidate.
var ErrNoValidCandidate = errors.New("search: worklist drained without a valid candidate within the mutation budget")
