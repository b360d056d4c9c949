package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/agentic-research/deckguard/api"
	"github.com/agentic-research/deckguard/internal/approval"
	"github.com/agentic-research/deckguard/internal/facade"
	"github.com/agentic-research/deckguard/internal/policy"
	"github.com/agentic-research/deckguard/internal/proclock"
)

const appVersion = "0.1.0"

// errResult signals that the JSON error envelope was already printed; the
// caller only needs the non-zero exit.
var errResult = errors.New("operation failed")

var (
	policyPath    string
	extraRoots    []string
	lockTimeout   time.Duration
	expectVersion string
	approvalToken string
)

var rootCmd = &cobra.Command{
	Use:   "deckguard",
	Short: "Guarded, auditable mutation of slide-deck documents",
	Long: `deckguard performs stateless, guarded mutations of slide-deck JSON
documents: every edit validates its target path, takes a cross-process
lock, captures before/after content fingerprints, and gates destructive
operations behind approval artifacts. Results are a JSON envelope on
stdout; logs go to stderr.`,
	Version:       appVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&policyPath, "policy", "", "Path to an HCL policy file (defaults apply without one)")
	pf.StringArrayVar(&extraRoots, "root", nil, "Additional allowed root directory (repeatable)")
	pf.DurationVar(&lockTimeout, "timeout", 0, "Override the lock acquisition timeout")
	pf.StringVar(&expectVersion, "expect-version", "", "Fail with VERSION_CONFLICT unless the document matches this fingerprint")
	pf.StringVar(&approvalToken, "approval-token", "", "Approval artifact JSON, or @file holding it (required for destructive operations)")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errResult) {
			fmt.Fprintf(os.Stderr, "deckguard: %v\n", err)
		}
		os.Exit(1)
	}
}

func loadPolicy() (*policy.Policy, error) {
	p, err := policy.Load(policyPath)
	if err != nil {
		return nil, err
	}
	p.AllowedRoots = append(p.AllowedRoots, extraRoots...)
	if lockTimeout > 0 {
		p.LockTimeout = lockTimeout
	}
	return p, nil
}

// newFacade wires the facade from the resolved policy. The returned cleanup
// closes the approval ledger.
func newFacade() (*facade.Facade, func(), error) {
	p, err := loadPolicy()
	if err != nil {
		return nil, nil, err
	}
	gate, err := approval.Open(p.ApprovalLedgerPath, p.SigningKey(), p.ExtraDestructive)
	if err != nil {
		return nil, nil, err
	}
	locker := proclock.New(p.LockRetryInterval, p.LockStaleAfter)
	return facade.New(p, gate, locker), func() { _ = gate.Close() }, nil
}

// runOp executes one facade request and prints the result envelope.
func runOp(cmd *cobra.Command, req api.Request) error {
	f, cleanup, err := newFacade()
	if err != nil {
		return err
	}
	defer cleanup()

	if expectVersion != "" {
		req.ExpectedVersion = expectVersion
	}
	if approvalToken != "" {
		art, err := parseArtifact(approvalToken)
		if err != nil {
			return err
		}
		req.Approval = art
	}

	res := f.Do(cmd.Context(), req)
	fmt.Fprintln(cmd.OutOrStdout(), oj.JSON(res, 2))
	if res.Status != "success" {
		return errResult
	}
	return nil
}

// parseArtifact accepts the artifact JSON printed by `approve mint`, either
// inline or as @path to a file.
func parseArtifact(raw string) (*api.ApprovalArtifact, error) {
	if after, ok := strings.CutPrefix(raw, "@"); ok {
		data, err := os.ReadFile(after)
		if err != nil {
			return nil, fmt.Errorf("read approval token file: %w", err)
		}
		raw = string(data)
	}
	var art api.ApprovalArtifact
	if err := json.Unmarshal([]byte(raw), &art); err != nil {
		return nil, fmt.Errorf("parse approval token: %w", err)
	}
	return &art, nil
}
