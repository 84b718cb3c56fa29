package driven

import "context"

// ThreadInfo describes a conversation thread stored by the runtime.
type ThreadInfo struct {
	ID    string
	Title string
}

// ThreadService is a thin passthrough over the runtime's thread CRUD
// endpoints.
type ThreadService interface {
	// Threads lists stored conversation threads.
	Threads(ctx context.Context) ([]ThreadInfo, error)

	// DeleteThread removes a stored thread.
	DeleteThread(ctx context.Context, id string) error
}
