package policy

import (
	"context"
	"strings"
)

// Policy narrows the set of enabled targets an orchestration run executes.
//
//   - AllowList, when non-empty, restricts execution to the listed targets.
//   - BlockList excludes targets regardless of AllowList.
//
// A nil *Policy means "run every enabled target" and is therefore the
// zero-cost default.
type Policy struct {
	AllowList []string
	BlockList []string
}

// IsAllowed evaluates AllowList / BlockList against a target name. Both
// lists match by exact, case-insensitive string comparison.
func (p *Policy) IsAllowed(target string) bool {
	if p == nil {
		return true
	}

	normalized := strings.ToLower(target)

	// BlockList has priority.
	for _, b := range p.BlockList {
		if normalized == strings.ToLower(b) {
			return false
		}
	}

	// AllowList - if empty everything is allowed, otherwise only the listed
	// entries.
	if len(p.AllowList) == 0 {
		return true
	}

	for _, a := range p.AllowList {
		if normalized == strings.ToLower(a) {
			return true
		}
	}

	return false
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the *Policy from ctx or nil when absent.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
