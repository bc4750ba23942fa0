package inject

import "context"

// Injector hands assistant responses to the user's desktop.
type Injector interface {
	Copy(ctx context.Context, text string) error
	Paste(ctx context.Context, text string) error
	Deliver(ctx context.Context, text string) error
}
