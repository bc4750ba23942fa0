//go:build darwin

package permissions

/*
#cgo LDFLAGS: -framework AVFoundation -framework Cocoa -framework CoreGraphics
#import <AVFoundation/AVFoundation.h>
#import <Cocoa/Cocoa.h>
#import <CoreGraphics/CoreGraphics.h>

int checkMicrophonePermission() {
    AVAuthorizationStatus status = [AVCaptureDevice authorizationStatusForMediaType:AVMediaTypeAudio];
    return (int)status;
}

void requestMicrophonePermission() {
    [AVCaptureDevice requestAccessForMediaType:AVMediaTypeAudio completionHandler:^(BOOL granted) {}];
}

int checkAccessibilityPermission() {
    NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: @YES};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}

int checkScreenCapturePermission() {
    return CGPreflightScreenCaptureAccess() ? 1 : 0;
}

void requestScreenCapturePermission() {
    CGRequestScreenCaptureAccess();
}
*/
import "C"

import "errors"

const (
	PermissionNotDetermined = 0
	PermissionRestricted    = 1
	PermissionDenied        = 2
	PermissionAuthorized    = 3
)

// CheckMicrophone returns the current microphone permission status
func CheckMicrophone() int {
	return int(C.checkMicrophonePermission())
}

// RequestMicrophone triggers the system microphone permission dialog
func RequestMicrophone() {
	C.requestMicrophonePermission()
}

// CheckAccessibility reports whether the app may register global hotkeys.
// It shows the system prompt when access has not been granted yet.
func CheckAccessibility() bool {
	return C.checkAccessibilityPermission() == 1
}

// CheckScreenCapture reports whether screenshots include other windows.
func CheckScreenCapture() bool {
	return C.checkScreenCapturePermission() == 1
}

// RequestScreenCapture shows the screen recording prompt
func RequestScreenCapture() {
	C.requestScreenCapturePermission()
}

// Ensure checks and requests the permissions in n. All missing
// permissions are reported together.
func Ensure(n Needs) error {
	var errs []error

	if n.Microphone && CheckMicrophone() != PermissionAuthorized {
		RequestMicrophone()
		errs = append(errs, ErrMicrophone)
	}

	if n.Screen && !CheckScreenCapture() {
		RequestScreenCapture()
		errs = append(errs, ErrScreenCapture)
	}

	if n.Hotkeys && !CheckAccessibility() {
		errs = append(errs, ErrAccessibility)
	}

	return errors.Join(errs...)
}
