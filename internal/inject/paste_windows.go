//go:build windows

package inject

import (
	"context"
	"errors"
)

// platformPaste implements clipboard-paste strategy for Windows
// TODO: Implement using Win32 API (SetClipboardData + SendInput for Ctrl+V)
func platformPaste(ctx context.Context, text string) error {
	return errors.New("paste not yet implemented on Windows")
}
