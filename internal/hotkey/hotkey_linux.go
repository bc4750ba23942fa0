//go:build linux

package hotkey

/*
#cgo pkg-config: x11
#include <X11/Xlib.h>
#include <X11/keysym.h>
#include <stdlib.h>

static Display* displayPtr = NULL;
static int grabFailed = 0;

static int onXError(Display* d, XErrorEvent* e) {
    grabFailed = 1;
    return 0;
}

static int openDisplay() {
    if (displayPtr == NULL) {
        XInitThreads();
        displayPtr = XOpenDisplay(NULL);
        if (displayPtr != NULL) {
            XSetErrorHandler(onXError);
        }
    }
    return displayPtr != NULL;
}

// Grabs keysym+modifiers, also with CapsLock and NumLock held.
// Returns the keycode, or 0 on failure.
static int grabKey(const char* name, int modifiers) {
    if (!openDisplay()) return 0;

    KeySym sym = XStringToKeysym(name);
    if (sym == NoSymbol) return 0;
    KeyCode keycode = XKeysymToKeycode(displayPtr, sym);
    if (keycode == 0) return 0;

    Window root = DefaultRootWindow(displayPtr);
    unsigned int extra[4] = {0, LockMask, Mod2Mask, LockMask | Mod2Mask};
    grabFailed = 0;
    for (int i = 0; i < 4; i++) {
        XGrabKey(displayPtr, keycode, modifiers | extra[i], root, False, GrabModeAsync, GrabModeAsync);
    }
    XSelectInput(displayPtr, root, KeyPressMask | KeyReleaseMask);
    XSync(displayPtr, False);

    return grabFailed ? 0 : keycode;
}

static void ungrabKey(int keycode, int modifiers) {
    if (displayPtr == NULL) return;
    Window root = DefaultRootWindow(displayPtr);
    unsigned int extra[4] = {0, LockMask, Mod2Mask, LockMask | Mod2Mask};
    for (int i = 0; i < 4; i++) {
        XUngrabKey(displayPtr, keycode, modifiers | extra[i], root);
    }
    XSync(displayPtr, False);
}

static int checkEvent(int* keycode, int* pressed) {
    if (displayPtr == NULL) return 0;

    XEvent event;
    if (XPending(displayPtr) > 0) {
        XNextEvent(displayPtr, &event);
        if (event.type == KeyPress || event.type == KeyRelease) {
            *keycode = event.xkey.keycode;
            *pressed = (event.type == KeyPress) ? 1 : 0;
            return 1;
        }
    }
    return 0;
}
*/
import "C"

import (
	"fmt"
	"sync"
	"time"
	"unsafe"
)

type grab struct {
	keycode   int
	modifiers int
}

type linuxManager struct {
	mu        sync.Mutex
	callbacks map[int]func(bool)
	grabs     map[string]grab
	stop      chan struct{}
	done      chan struct{}
}

// New creates a new Linux hotkey manager using X11
func New() (Manager, error) {
	mgr := &linuxManager{
		callbacks: make(map[int]func(bool)),
		grabs:     make(map[string]grab),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	go mgr.eventLoop()

	return mgr, nil
}

func (m *linuxManager) Register(accel string, callback func(pressed bool)) error {
	acc, err := ParseAccelerator(accel)
	if err != nil {
		return err
	}

	name := C.CString(acc.x11Keysym())
	defer C.free(unsafe.Pointer(name))

	modifiers := acc.x11Modifiers()
	keycode := int(C.grabKey(name, C.int(modifiers)))
	if keycode == 0 {
		return fmt.Errorf("failed to grab %s (no X display, or the shortcut is taken)", acc)
	}

	m.mu.Lock()
	m.callbacks[keycode] = callback
	m.grabs[acc.String()] = grab{keycode: keycode, modifiers: modifiers}
	m.mu.Unlock()
	return nil
}

func (m *linuxManager) eventLoop() {
	defer close(m.done)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			var keycode, pressed C.int
			if C.checkEvent(&keycode, &pressed) != 0 {
				m.mu.Lock()
				cb, ok := m.callbacks[int(keycode)]
				m.mu.Unlock()
				if ok {
					cb(pressed == 1)
				}
			}
		}
	}
}

func (m *linuxManager) Unregister(accel string) error {
	acc, err := ParseAccelerator(accel)
	if err != nil {
		return err
	}

	m.mu.Lock()
	g, ok := m.grabs[acc.String()]
	delete(m.grabs, acc.String())
	delete(m.callbacks, g.keycode)
	m.mu.Unlock()

	if ok {
		C.ungrabKey(C.int(g.keycode), C.int(g.modifiers))
	}
	return nil
}

func (m *linuxManager) Close() error {
	close(m.stop)
	<-m.done
	return nil
}
