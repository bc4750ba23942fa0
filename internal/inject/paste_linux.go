//go:build linux

package inject

import (
	"context"
	"errors"
)

// platformPaste implements clipboard-paste strategy for Linux
// TODO: Implement using XTest/xdotool or Wayland protocols
func platformPaste(ctx context.Context, text string) error {
	return errors.New("paste not yet implemented on Linux")
}
