package inject

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"

	"github.com/petems/whispr/internal/config"
)

type clipboardInjector struct {
	cfg   config.InjectConfig
	write func(string) error
	paste func(ctx context.Context, text string) error
}

// New creates a clipboard based injector
func New(cfg config.InjectConfig) Injector {
	return &clipboardInjector{
		cfg:   cfg,
		write: clipboard.WriteAll,
		paste: platformPaste,
	}
}

// Copy places text on the system clipboard
func (c *clipboardInjector) Copy(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.write(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// Paste puts text on the clipboard and sends the platform paste shortcut.
func (c *clipboardInjector) Paste(ctx context.Context, text string) error {
	return c.paste(ctx, text)
}

// Deliver pastes when configured to, and falls back to leaving the text
// on the clipboard.
func (c *clipboardInjector) Deliver(ctx context.Context, text string) error {
	if c.cfg.PreferPaste {
		if err := c.Paste(ctx, text); err == nil {
			return nil
		}
	}
	return c.Copy(ctx, text)
}

const (
	pasteSettle  = 50 * time.Millisecond
	restoreDelay = 150 * time.Millisecond
)

// pasteSequence swaps text onto the clipboard, sends the paste keystroke and
// puts the previous contents back unless the clipboard no longer holds text.
type pasteSequence struct {
	read      func() (string, error)
	write     func(string) error
	keystroke func() error
	before    time.Duration
	after     time.Duration
}

func (p pasteSequence) run(ctx context.Context, text string) error {
	prev, err := p.read()
	if err != nil {
		prev = ""
	}

	if err := p.write(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	if err := wait(ctx, p.before); err != nil {
		return err
	}
	if err := p.keystroke(); err != nil {
		return fmt.Errorf("failed to send paste shortcut: %w", err)
	}
	if err := wait(ctx, p.after); err != nil {
		return err
	}

	if cur, err := p.read(); err == nil && cur == text {
		_ = p.write(prev)
	}
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
