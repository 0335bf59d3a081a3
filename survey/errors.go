package survey

import "errors"

// Sentinel error categories. Operations wrap these with entity
// context; callers test with errors.Is to pick a response status.
var (
	// ErrNotFound marks a missing referenced entity.
	ErrNotFound = errors.New("not found")
	// ErrInvalid marks a request rejected on its own content,
	// before or instead of touching storage.
	ErrInvalid = errors.New("invalid request")
)
