package turn

import "errors"

// The only errors allowed to abort a turn. Everything downstream of a
// generated narrative degrades instead of failing the player-visible
// response.
var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrSessionNotFound      = errors.New("session not found")
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	ErrGenerationFailed     = errors.New("generation failed")
)
