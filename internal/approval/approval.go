// Package approval gates destructive operations behind caller-supplied
// approval artifacts. An artifact is scoped, expiring, HMAC-signed, and
// single-use; consumption is recorded in a sqlite ledger so the guarantee
// holds across independent processes.
package approval

import (
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/agentic-research/deckguard/api"
	"github.com/agentic-research/deckguard/internal/errs"
	"github.com/agentic-research/deckguard/internal/logging"
)

// Required scopes for the built-in destructive operations.
const (
	ScopeDeleteSlide = "delete:slide"
	ScopeDeleteShape = "delete:shape"
	ScopeReplaceText = "replace:text"
)

// builtinDestructive maps destructive operation names to required scopes.
// Operations absent from this map (and the policy extras) are
// non-destructive and never inspect artifacts.
var builtinDestructive = map[string]string{
	api.OpDeleteSlide:    ScopeDeleteSlide,
	api.OpRemoveShape:    ScopeDeleteShape,
	api.OpReplaceAllText: ScopeReplaceText,
}

// unsignedTag replaces the signature when no signing key is configured.
const unsignedTag = "unsigned"

// Gate validates artifacts and tracks consumption.
type Gate struct {
	db          *sql.DB
	key         []byte
	destructive map[string]string
	now         func() time.Time
	log         *logging.Logger
}

// Open creates or opens the artifact ledger. extraOps are policy-declared
// destructive operation names; their required scope is the operation name
// itself. An empty key disables signature verification (shape-and-ledger
// checking only) with a logged warning.
func Open(ledgerPath string, key []byte, extraOps []string) (*Gate, error) {
	if err := os.MkdirAll(filepath.Dir(ledgerPath), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	db, err := sql.Open("sqlite", ledgerPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", ledgerPath, err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS artifacts (
		nonce       TEXT PRIMARY KEY,
		scope       TEXT NOT NULL,
		expiry      INTEGER NOT NULL,
		single_use  INTEGER NOT NULL DEFAULT 1,
		minted_at   INTEGER NOT NULL,
		consumed_at INTEGER
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}

	destructive := make(map[string]string, len(builtinDestructive)+len(extraOps))
	for op, scope := range builtinDestructive {
		destructive[op] = scope
	}
	for _, op := range extraOps {
		destructive[op] = op
	}

	g := &Gate{
		db:          db,
		key:         key,
		destructive: destructive,
		now:         time.Now,
		log:         logging.Named("approval"),
	}
	if len(key) == 0 {
		g.log.Warn().Msg("no approval signing key configured; artifacts are checked by shape and ledger only")
	}
	return g, nil
}

// Close releases the ledger.
func (g *Gate) Close() error { return g.db.Close() }

// RequiredScope returns the scope a destructive operation demands, or
// ("", false) for non-destructive operations.
func (g *Gate) RequiredScope(op string) (string, bool) {
	scope, ok := g.destructive[op]
	return scope, ok
}

// Check decides whether op may proceed. Non-destructive operations pass
// without inspecting the artifact. Destructive operations require a valid,
// unexpired, correctly scoped, unconsumed artifact; success consumes
// single-use artifacts in the same transaction.
func (g *Gate) Check(op string, artifact *api.ApprovalArtifact) error {
	scope, destructive := g.destructive[op]
	if !destructive {
		return nil
	}
	if artifact == nil {
		return g.denied(op, scope, "missing")
	}
	if artifact.Scope != scope {
		return g.denied(op, scope, "wrong_scope")
	}
	if !artifact.Expiry.After(g.now()) {
		return g.denied(op, scope, "expired")
	}

	nonce, sig, ok := strings.Cut(artifact.Token, ".")
	if !ok || nonce == "" || sig == "" {
		return g.denied(op, scope, "malformed")
	}
	if len(g.key) > 0 {
		want := signature(artifact.Scope, artifact.Expiry, nonce, g.key)
		if !hmac.Equal([]byte(sig), []byte(want)) {
			return g.denied(op, scope, "bad_signature")
		}
	}

	if err := g.consume(nonce, artifact); err != nil {
		if errs.IsCode(err, errs.CodeApprovalRequired) {
			return errs.WithOp(err, op)
		}
		return err
	}
	return nil
}

// consume records first use of the nonce, rejecting reuse. Artifacts minted
// by another host appear here on first use; the insert is what makes the
// single-use invariant hold across processes.
func (g *Gate) consume(nonce string, artifact *api.ApprovalArtifact) error {
	tx, err := g.db.Begin()
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var consumedAt sql.NullInt64
	now := g.now().Unix()
	err = tx.QueryRow(`SELECT consumed_at FROM artifacts WHERE nonce = ?`, nonce).Scan(&consumedAt)
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.Exec(
			`INSERT INTO artifacts (nonce, scope, expiry, single_use, minted_at, consumed_at) VALUES (?, ?, ?, ?, ?, ?)`,
			nonce, artifact.Scope, artifact.Expiry.Unix(), boolInt(artifact.SingleUse), now, consumedMark(artifact.SingleUse, now),
		); err != nil {
			return fmt.Errorf("record artifact use: %w", err)
		}
	case err != nil:
		return fmt.Errorf("query ledger: %w", err)
	case consumedAt.Valid:
		return errs.NewD(errs.CodeApprovalRequired, "approval artifact already used",
			map[string]any{"required_scope": artifact.Scope, "reason": "already_used"})
	default:
		if artifact.SingleUse {
			if _, err := tx.Exec(`UPDATE artifacts SET consumed_at = ? WHERE nonce = ?`, now, nonce); err != nil {
				return fmt.Errorf("consume artifact: %w", err)
			}
		}
	}
	return tx.Commit()
}

// Mint issues a new artifact and registers it in the ledger.
func (g *Gate) Mint(scope string, ttl time.Duration, singleUse bool) (*api.ApprovalArtifact, error) {
	if scope == "" {
		return nil, errs.New(errs.CodeApprovalRequired, "mint requires a scope")
	}
	if ttl <= 0 {
		return nil, errs.New(errs.CodeApprovalRequired, "mint requires a positive ttl")
	}

	nonce := uuid.NewString()
	expiry := g.now().Add(ttl).Truncate(time.Second)
	sig := unsignedTag
	if len(g.key) > 0 {
		sig = signature(scope, expiry, nonce, g.key)
	}

	if _, err := g.db.Exec(
		`INSERT INTO artifacts (nonce, scope, expiry, single_use, minted_at) VALUES (?, ?, ?, ?, ?)`,
		nonce, scope, expiry.Unix(), boolInt(singleUse), g.now().Unix(),
	); err != nil {
		return nil, fmt.Errorf("register artifact: %w", err)
	}

	return &api.ApprovalArtifact{
		Scope:     scope,
		Expiry:    expiry,
		SingleUse: singleUse,
		Token:     nonce + "." + sig,
	}, nil
}

func (g *Gate) denied(op, scope, reason string) error {
	return errs.WithOp(errs.NewD(errs.CodeApprovalRequired, "destructive operation requires approval",
		map[string]any{"required_scope": scope, "reason": reason}), op)
}

// signature is hex HMAC-SHA256 over "scope|expiry-unix|nonce".
func signature(scope string, expiry time.Time, nonce string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s|%d|%s", scope, expiry.Unix(), nonce)
	return hex.EncodeToString(mac.Sum(nil))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func consumedMark(singleUse bool, now int64) any {
	if singleUse {
		return now
	}
	return nil
}
