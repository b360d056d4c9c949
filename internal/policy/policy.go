// Package policy loads the deckguard policy file: allowed roots, accepted
// document extensions, lock tuning, the destructive operation set, and
// contrast thresholds. The file is HCL; every field has a default so the
// tool runs without one.
package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// File is the raw HCL shape of a policy file.
type File struct {
	AllowedRoots []string      `hcl:"allowed_roots,optional"`
	Extensions   []string      `hcl:"extensions,optional"`
	Lock         *LockBlock    `hcl:"lock,block"`
	Approval     *ApprovalFile `hcl:"approval,block"`
	Contrast     *ContrastFile `hcl:"contrast,block"`
}

// LockBlock tunes the process lock. Durations are Go duration strings.
type LockBlock struct {
	Timeout       string `hcl:"timeout,optional"`
	RetryInterval string `hcl:"retry_interval,optional"`
	StaleAfter    string `hcl:"stale_after,optional"`
}

// ApprovalFile tunes the approval gate.
type ApprovalFile struct {
	LedgerPath       string   `hcl:"ledger_path,optional"`
	SigningKeyEnv    string   `hcl:"signing_key_env,optional"`
	ExtraDestructive []string `hcl:"extra_destructive,optional"`
}

// ContrastFile overrides the WCAG thresholds.
type ContrastFile struct {
	NormalMin float64 `hcl:"normal_min,optional"`
	LargeMin  float64 `hcl:"large_min,optional"`
}

// Policy is the resolved, validated configuration used by the facade.
type Policy struct {
	AllowedRoots []string
	Extensions   []string

	LockTimeout       time.Duration
	LockRetryInterval time.Duration
	LockStaleAfter    time.Duration

	ApprovalLedgerPath string
	SigningKeyEnv      string
	ExtraDestructive   []string

	ContrastNormalMin float64
	ContrastLargeMin  float64
}

// Default returns the built-in policy.
func Default() *Policy {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return &Policy{
		Extensions:         []string{".deck.json", ".deck"},
		LockTimeout:        10 * time.Second,
		LockRetryInterval:  100 * time.Millisecond,
		LockStaleAfter:     10 * time.Minute,
		ApprovalLedgerPath: filepath.Join(home, ".deckguard", "approvals.db"),
		SigningKeyEnv:      "DECKGUARD_APPROVAL_KEY",
		ContrastNormalMin:  4.5,
		ContrastLargeMin:   3.0,
	}
}

// Load reads an HCL policy file and merges it over the defaults.
// path == "" returns the defaults unchanged.
func Load(path string) (*Policy, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	var f File
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return nil, fmt.Errorf("parse policy %s: %w", path, err)
	}

	if len(f.AllowedRoots) > 0 {
		p.AllowedRoots = f.AllowedRoots
	}
	if len(f.Extensions) > 0 {
		p.Extensions = f.Extensions
	}
	if f.Lock != nil {
		if err := mergeDuration(&p.LockTimeout, f.Lock.Timeout, "lock.timeout"); err != nil {
			return nil, err
		}
		if err := mergeDuration(&p.LockRetryInterval, f.Lock.RetryInterval, "lock.retry_interval"); err != nil {
			return nil, err
		}
		if err := mergeDuration(&p.LockStaleAfter, f.Lock.StaleAfter, "lock.stale_after"); err != nil {
			return nil, err
		}
	}
	if f.Approval != nil {
		if f.Approval.LedgerPath != "" {
			p.ApprovalLedgerPath = f.Approval.LedgerPath
		}
		if f.Approval.SigningKeyEnv != "" {
			p.SigningKeyEnv = f.Approval.SigningKeyEnv
		}
		p.ExtraDestructive = append(p.ExtraDestructive, f.Approval.ExtraDestructive...)
	}
	if f.Contrast != nil {
		if f.Contrast.NormalMin > 0 {
			p.ContrastNormalMin = f.Contrast.NormalMin
		}
		if f.Contrast.LargeMin > 0 {
			p.ContrastLargeMin = f.Contrast.LargeMin
		}
	}
	return p, nil
}

// SigningKey reads the approval signing key from the configured env var.
// Empty means signature verification is disabled (shape-and-ledger only).
func (p *Policy) SigningKey() []byte {
	v := os.Getenv(p.SigningKeyEnv)
	if v == "" {
		return nil
	}
	return []byte(v)
}

func mergeDuration(dst *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("policy %s: invalid duration %q: %w", field, raw, err)
	}
	*dst = d
	return nil
}
