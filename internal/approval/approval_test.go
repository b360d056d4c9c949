package approval

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/agentic-research/deckguard/api"
	"github.com/agentic-research/deckguard/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openGate(t *testing.T, key []byte, extra ...string) *Gate {
	t.Helper()
	g, err := Open(filepath.Join(t.TempDir(), "approvals.db"), key, extra)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func denialReason(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	require.True(t, errs.IsCode(err, errs.CodeApprovalRequired))
	e, _ := errs.As(err)
	reason, _ := e.Details()["reason"].(string)
	return reason
}

func TestCheck_NonDestructivePasses(t *testing.T) {
	g := openGate(t, []byte("k"))
	assert.NoError(t, g.Check(api.OpInsertSlide, nil))
	assert.NoError(t, g.Check(api.OpMoveShape, nil))
	// garbage artifact is not even inspected
	assert.NoError(t, g.Check(api.OpSetSlideTitle, &api.ApprovalArtifact{Token: "junk"}))
}

func TestCheck_MissingArtifact(t *testing.T) {
	g := openGate(t, []byte("k"))
	err := g.Check(api.OpDeleteSlide, nil)
	assert.Equal(t, "missing", denialReason(t, err))

	e, _ := errs.As(err)
	assert.Equal(t, ScopeDeleteSlide, e.Details()["required_scope"])
}

func TestCheck_SingleUse(t *testing.T) {
	g := openGate(t, []byte("k"))
	art, err := g.Mint(ScopeDeleteSlide, time.Minute, true)
	require.NoError(t, err)

	require.NoError(t, g.Check(api.OpDeleteSlide, art))

	err = g.Check(api.OpDeleteSlide, art)
	assert.Equal(t, "already_used", denialReason(t, err))
}

func TestCheck_SingleUseAcrossGateInstances(t *testing.T) {
	ledger := filepath.Join(t.TempDir(), "approvals.db")
	key := []byte("shared")

	g1, err := Open(ledger, key, nil)
	require.NoError(t, err)
	art, err := g1.Mint(ScopeDeleteShape, time.Minute, true)
	require.NoError(t, err)
	require.NoError(t, g1.Check(api.OpRemoveShape, art))
	require.NoError(t, g1.Close())

	// a fresh process sees the consumption through the shared ledger
	g2, err := Open(ledger, key, nil)
	require.NoError(t, err)
	defer func() { _ = g2.Close() }()
	err = g2.Check(api.OpRemoveShape, art)
	assert.Equal(t, "already_used", denialReason(t, err))
}

func TestCheck_WrongScope(t *testing.T) {
	g := openGate(t, []byte("k"))
	art, err := g.Mint(ScopeDeleteShape, time.Minute, true)
	require.NoError(t, err)

	err = g.Check(api.OpDeleteSlide, art)
	assert.Equal(t, "wrong_scope", denialReason(t, err))
}

func TestCheck_Expired(t *testing.T) {
	g := openGate(t, []byte("k"))
	art, err := g.Mint(ScopeDeleteSlide, time.Minute, true)
	require.NoError(t, err)

	g.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	err = g.Check(api.OpDeleteSlide, art)
	assert.Equal(t, "expired", denialReason(t, err))
}

func TestCheck_Malformed(t *testing.T) {
	g := openGate(t, []byte("k"))
	art := &api.ApprovalArtifact{
		Scope:     ScopeDeleteSlide,
		Expiry:    time.Now().Add(time.Minute),
		SingleUse: true,
		Token:     "no-separator",
	}
	err := g.Check(api.OpDeleteSlide, art)
	assert.Equal(t, "malformed", denialReason(t, err))
}

func TestCheck_BadSignature(t *testing.T) {
	g := openGate(t, []byte("k"))
	art, err := g.Mint(ScopeDeleteSlide, time.Minute, true)
	require.NoError(t, err)

	forged := *art
	forged.Token = "forged-nonce.deadbeef"
	err = g.Check(api.OpDeleteSlide, &forged)
	assert.Equal(t, "bad_signature", denialReason(t, err))

	// tampered scope invalidates the signature too
	g2 := openGate(t, []byte("k"), "wipe_deck")
	art2, err := g2.Mint("wipe_deck", time.Minute, true)
	require.NoError(t, err)
	art2.Scope = ScopeDeleteSlide
	err = g2.Check(api.OpDeleteSlide, art2)
	assert.Equal(t, "bad_signature", denialReason(t, err))
}

func TestCheck_UnsignedModeStillEnforcesLedger(t *testing.T) {
	g := openGate(t, nil)
	art, err := g.Mint(ScopeDeleteSlide, time.Minute, true)
	require.NoError(t, err)

	require.NoError(t, g.Check(api.OpDeleteSlide, art))
	err = g.Check(api.OpDeleteSlide, art)
	assert.Equal(t, "already_used", denialReason(t, err))
}

func TestCheck_ReusableArtifact(t *testing.T) {
	g := openGate(t, []byte("k"))
	art, err := g.Mint(ScopeReplaceText, time.Minute, false)
	require.NoError(t, err)

	require.NoError(t, g.Check(api.OpReplaceAllText, art))
	require.NoError(t, g.Check(api.OpReplaceAllText, art))
}

func TestExtraDestructiveOps(t *testing.T) {
	g := openGate(t, []byte("k"), "wipe_deck")

	scope, ok := g.RequiredScope("wipe_deck")
	require.True(t, ok)
	assert.Equal(t, "wipe_deck", scope)

	err := g.Check("wipe_deck", nil)
	assert.Equal(t, "missing", denialReason(t, err))

	art, err := g.Mint("wipe_deck", time.Minute, true)
	require.NoError(t, err)
	assert.NoError(t, g.Check("wipe_deck", art))
}

func TestMint_Validation(t *testing.T) {
	g := openGate(t, []byte("k"))
	_, err := g.Mint("", time.Minute, true)
	require.Error(t, err)
	_, err = g.Mint(ScopeDeleteSlide, 0, true)
	require.Error(t, err)
}
