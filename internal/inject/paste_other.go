//go:build !darwin && !linux && !windows

package inject

import (
	"context"
	"errors"
)

func platformPaste(ctx context.Context, text string) error {
	return errors.New("paste not supported on this platform")
}
