// Package facade orchestrates one guarded mutation end-to-end: path
// validation, cross-process locking, before/after version capture,
// approval gating for destructive calls, and delegation of the actual edit
// to the document model and the resolvers. Every component failure is
// recovered into the uniform result envelope; the lock is released on
// every exit path.
package facade

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/agentic-research/deckguard/api"
	"github.com/agentic-research/deckguard/internal/approval"
	"github.com/agentic-research/deckguard/internal/color"
	"github.com/agentic-research/deckguard/internal/docmodel"
	"github.com/agentic-research/deckguard/internal/errs"
	"github.com/agentic-research/deckguard/internal/logging"
	"github.com/agentic-research/deckguard/internal/pathguard"
	"github.com/agentic-research/deckguard/internal/policy"
	"github.com/agentic-research/deckguard/internal/proclock"
	"github.com/agentic-research/deckguard/internal/version"
)

// Facade executes requests against the configured policy.
type Facade struct {
	policy   *policy.Policy
	gate     *approval.Gate
	locker   *proclock.Locker
	validate *validator.Validate
	log      *logging.Logger
}

// New wires a Facade from its collaborators.
func New(p *policy.Policy, gate *approval.Gate, locker *proclock.Locker) *Facade {
	return &Facade{
		policy:   p,
		gate:     gate,
		locker:   locker,
		validate: validator.New(),
		log:      logging.Named("facade"),
	}
}

// Do runs one request to completion and returns the result envelope.
// It never panics outward: recovered panics become INTERNAL errors.
func (f *Facade) Do(ctx context.Context, req api.Request) (res api.Result) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error().Any("panic", r).Str("operation", req.Operation).Msg("recovered panic")
			res = errorResult(errs.WithOp(errs.Newf(errs.CodeInternal, "panic: %v", r), req.Operation))
		}
	}()

	if err := f.validate.Struct(req); err != nil {
		return errorResult(errs.WithOp(errs.Wrap(err, errs.CodeRequestInvalid, "malformed request"), req.Operation))
	}

	var (
		data map[string]any
		err  error
	)
	switch req.Operation {
	case api.OpCheckContrast:
		data, err = f.checkContrast(req)
	case api.OpGetVersion:
		data, err = f.getVersion(req)
	default:
		data, err = f.mutate(ctx, req)
	}
	if err != nil {
		err = errs.WithOp(err, req.Operation)
		f.log.Debug().Str("operation", req.Operation).Str("code", string(errs.CodeOf(err))).Msg("request failed")
		return errorResult(err)
	}
	return api.Result{Status: "success", Data: data}
}

// mutate is the locked open→edit→save pipeline shared by every mutating
// operation.
func (f *Facade) mutate(ctx context.Context, req api.Request) (map[string]any, error) {
	if _, known := mutations[req.Operation]; !known {
		return nil, errs.NewD(errs.CodeUnknownOperation, "unknown operation",
			map[string]any{"operation": req.Operation, "known_operations": operationNames()})
	}

	path, err := pathguard.Validate(req.Path, pathguard.Requirements{
		MustExist:      true,
		MustBeWritable: true,
		AllowedRoots:   f.policy.AllowedRoots,
		Extensions:     f.policy.Extensions,
	})
	if err != nil {
		return nil, err
	}

	tok, err := f.locker.Acquire(ctx, path, f.policy.LockTimeout)
	if err != nil {
		return nil, err
	}
	// Guaranteed cleanup: a parse error or a failing edit must never leave
	// the document locked. Release failure is best-effort (already logged).
	defer func() { _ = f.locker.Release(tok) }()

	deck, err := docmodel.Open(path)
	if err != nil {
		return nil, err
	}
	sess := newSession(deck, path)

	versionBefore := version.Capture(deck)
	if req.ExpectedVersion != "" && req.ExpectedVersion != versionBefore {
		return nil, errs.NewD(errs.CodeVersionConflict, "document changed since the expected version was captured",
			map[string]any{"expected": req.ExpectedVersion, "actual": versionBefore})
	}

	if err := f.gate.Check(req.Operation, req.Approval); err != nil {
		return nil, err
	}

	data, err := mutations[req.Operation](sess, req)
	if err != nil {
		return nil, err
	}

	if err := deck.Save(path); err != nil {
		return nil, errs.Wrapf(err, errs.CodeInternal, "save deck %s", path)
	}

	if data == nil {
		data = map[string]any{}
	}
	data[api.KeyVersionBefore] = versionBefore
	data[api.KeyVersionAfter] = version.Capture(deck)
	return data, nil
}

// getVersion captures a fingerprint without taking the lock: reads observe
// a consistent file because saves are atomic renames.
func (f *Facade) getVersion(req api.Request) (map[string]any, error) {
	path, err := pathguard.Validate(req.Path, pathguard.Requirements{
		MustExist:    true,
		AllowedRoots: f.policy.AllowedRoots,
		Extensions:   f.policy.Extensions,
	})
	if err != nil {
		return nil, err
	}
	deck, err := docmodel.Open(path)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"path":    path,
		"version": version.Capture(deck),
		"slides":  len(deck.Slides),
	}, nil
}

// checkContrast is pure: no path, no lock, no save.
func (f *Facade) checkContrast(req api.Request) (map[string]any, error) {
	if req.Foreground == nil || req.Background == nil {
		return nil, errs.New(errs.CodeRequestInvalid, "check_contrast requires foreground and background colors")
	}
	fg, err := color.Resolve(*req.Foreground)
	if err != nil {
		return nil, err
	}
	bg, err := color.Resolve(*req.Background)
	if err != nil {
		return nil, err
	}

	threshold := f.policy.ContrastNormalMin
	if req.LargeText {
		threshold = f.policy.ContrastLargeMin
	}
	ratio := color.ContrastRatio(fg, bg)
	return map[string]any{
		"foreground": fg.Hex(),
		"background": bg.Hex(),
		"ratio":      ratio,
		"threshold":  threshold,
		"passes":     ratio >= threshold,
		"large_text": req.LargeText,
	}, nil
}

func errorResult(err error) api.Result {
	w := errs.WireFrom(err)
	return api.Result{
		Status: "error",
		Error:  &api.ErrorInfo{Code: string(w.Code), Message: w.Message, Details: w.Details},
	}
}

func missingArg(op, arg string) error {
	return errs.NewD(errs.CodeRequestInvalid, fmt.Sprintf("%s requires %s", op, arg),
		map[string]any{"missing": arg})
}
