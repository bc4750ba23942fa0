// Package chainlog posts a response summary as a Solana devnet memo by
// running the bundled postMemo.js script with node.
package chainlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/whispr/internal/config"
)

const postTimeout = 90 * time.Second

// Receipt is the JSON the script prints on stdout.
type Receipt struct {
	Success     bool   `json:"success"`
	Signature   string `json:"signature"`
	ExplorerURL string `json:"explorerUrl"`
	Memo        string `json:"memo"`
	Hash        string `json:"hash"`
	PubKey      string `json:"pubkey"`
	Error       string `json:"error"`
}

type runFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

type Poster struct {
	node   string
	script string
	log    zerolog.Logger
	run    runFunc
}

func New(cfg config.ChainConfig, log zerolog.Logger) *Poster {
	node := cfg.Node
	if node == "" {
		node = "node"
	}
	script := cfg.Script
	if script == "" {
		script = "postMemo.js"
	}
	return &Poster{node: node, script: script, log: log, run: execRun}
}

// Post logs summary on chain and returns the confirmed transaction.
func (p *Poster) Post(ctx context.Context, summary string) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, postTimeout)
	defer cancel()

	p.log.Debug().Str("script", p.script).Int("summary_len", len(summary)).Msg("Posting memo")
	stdout, stderr, err := p.run(ctx, p.node, p.script, summary)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", p.script, err, msg)
		}
		return nil, fmt.Errorf("failed to execute %s %s: %w", p.node, p.script, err)
	}

	return parseReceipt(stdout)
}

func parseReceipt(out []byte) (*Receipt, error) {
	// The script logs progress to stderr; the result is the last stdout line.
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	last := lines[len(lines)-1]

	var r Receipt
	if err := json.Unmarshal([]byte(last), &r); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response from script: %w", err)
	}
	if !r.Success {
		if r.Error != "" {
			return nil, fmt.Errorf("solana transaction failed: %s", r.Error)
		}
		return nil, errors.New("solana transaction failed")
	}
	return &r, nil
}
