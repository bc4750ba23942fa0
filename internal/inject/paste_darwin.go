//go:build darwin

package inject

/*
#cgo LDFLAGS: -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>

enum { keyCommand = 55, keyV = 9 };

static void post_key(CGEventSourceRef src, CGKeyCode code, bool down, CGEventFlags flags) {
	CGEventRef ev = CGEventCreateKeyboardEvent(src, code, down);
	if (ev == NULL) {
		return;
	}
	if (flags != 0) {
		CGEventSetFlags(ev, flags);
	}
	CGEventPost(kCGHIDEventTap, ev);
	CFRelease(ev);
}

static int post_command_v(void) {
	CGEventSourceRef src = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
	if (src == NULL) {
		return -1;
	}
	post_key(src, keyCommand, true, kCGEventFlagMaskCommand);
	post_key(src, keyV, true, kCGEventFlagMaskCommand);
	post_key(src, keyV, false, 0);
	post_key(src, keyCommand, false, 0);
	CFRelease(src);
	return 0;
}
*/
import "C"

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"
)

func postCommandV() error {
	if C.post_command_v() != 0 {
		return errors.New("no event source for Cmd+V")
	}
	return nil
}

func platformPaste(ctx context.Context, text string) error {
	return pasteSequence{
		read:      clipboard.ReadAll,
		write:     clipboard.WriteAll,
		keystroke: postCommandV,
		before:    pasteSettle,
		after:     restoreDelay,
	}.run(ctx, text)
}
