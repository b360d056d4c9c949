// Package pathguard validates user-supplied document paths before anything
// touches them: canonicalization, allowed-root containment, extension
// checks, and existence/writability probes. Validation never creates or
// deletes files.
package pathguard

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/deckguard/internal/errs"
)

// Requirements drive one validation call.
type Requirements struct {
	MustExist      bool
	MustBeWritable bool

	// AllowedRoots, when non-empty, restricts the canonical path to
	// descendants of at least one root. Containment is computed on
	// canonical paths, not raw string prefixes.
	AllowedRoots []string

	// Extensions is the accepted document-type suffix set, e.g.
	// [".deck.json", ".deck"]. Matched case-insensitively.
	Extensions []string
}

// Validate resolves path to an absolute canonical form and checks it against
// req. Returns the canonical path or a PATH_INVALID error whose details name
// the specific failure so callers can retry deterministically.
func Validate(path string, req Requirements) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errs.New(errs.CodePathInvalid, "empty path")
	}

	canonical, err := canonicalize(path)
	if err != nil {
		return "", errs.Wrapf(err, errs.CodePathInvalid, "resolve %s", path)
	}

	if len(req.Extensions) > 0 && !hasAcceptedExtension(canonical, req.Extensions) {
		return "", errs.NewD(errs.CodePathInvalid, "unsupported document extension",
			map[string]any{"path": canonical, "accepted_extensions": req.Extensions})
	}

	if len(req.AllowedRoots) > 0 {
		ok, checked, err := containedInRoots(canonical, req.AllowedRoots)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errs.NewD(errs.CodePathInvalid, "path escapes allowed roots",
				map[string]any{"path": canonical, "allowed_roots": checked})
		}
	}

	info, statErr := os.Stat(canonical)
	switch {
	case statErr == nil:
		if info.IsDir() {
			return "", errs.Newf(errs.CodePathInvalid, "%s is a directory, not a document", canonical)
		}
	case os.IsNotExist(statErr):
		if req.MustExist {
			return "", errs.NewD(errs.CodePathInvalid, "document does not exist",
				map[string]any{"path": canonical})
		}
	default:
		return "", errs.Wrapf(statErr, errs.CodePathInvalid, "stat %s", canonical)
	}

	if req.MustBeWritable && statErr == nil {
		f, err := os.OpenFile(canonical, os.O_WRONLY, 0)
		if err != nil {
			return "", errs.NewD(errs.CodePathInvalid, "document is not writable",
				map[string]any{"path": canonical})
		}
		_ = f.Close()
	}

	return canonical, nil
}

// canonicalize resolves relative segments and symlinks. The target itself
// may not exist yet, so symlinks are resolved on the parent directory and
// the base name is re-joined.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(abs)), nil
}

// hasAcceptedExtension matches the full multi-dot suffix (".deck.json"),
// not just filepath.Ext, case-insensitively.
func hasAcceptedExtension(path string, accepted []string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, ext := range accepted {
		if strings.HasSuffix(base, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// containedInRoots reports whether canonical is a descendant of at least one
// root. Each root is canonicalized first; roots that do not resolve are
// skipped (a missing root can never contain anything).
func containedInRoots(canonical string, roots []string) (bool, []string, error) {
	sep := string(filepath.Separator)
	checked := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			continue
		}
		checked = append(checked, resolved)
		if canonical == resolved || strings.HasPrefix(canonical, resolved+sep) {
			return true, checked, nil
		}
	}
	if len(checked) == 0 {
		return false, nil, errs.New(errs.CodePathInvalid, "no allowed root resolves to an existing directory")
	}
	return false, checked, nil
}
