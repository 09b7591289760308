// Package conditions provides ready-made transition guards for Parley
// scripts. All helpers operate on the current turn's request.
package conditions

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// True always fires.
func True() domain.Condition {
	return func(ctx context.Context, dc *domain.Context, rt domain.Runtime) (bool, error) {
		return true, nil
	}
}

// False never fires.
func False() domain.Condition {
	return func(ctx context.Context, dc *domain.Context, rt domain.Runtime) (bool, error) {
		return false, nil
	}
}

// ExactMatch fires when the last request text equals text.
func ExactMatch(text string) domain.Condition {
	return func(ctx context.Context, dc *domain.Context, rt domain.Runtime) (bool, error) {
		req, ok := dc.LastRequest()
		if !ok {
			return false, nil
		}
		return req.Text == text, nil
	}
}

// Contains fires when the last request text contains sub.
func Contains(sub string) domain.Condition {
	return func(ctx context.Context, dc *domain.Context, rt domain.Runtime) (bool, error) {
		req, ok := dc.LastRequest()
		if !ok {
			return false, nil
		}
		return strings.Contains(req.Text, sub), nil
	}
}

// Regexp fires when the last request text matches pattern. The pattern is
// compiled eagerly; a bad pattern yields a condition that always errors,
// which the engine reads as false and static validation reports.
func Regexp(pattern string) domain.Condition {
	re, err := regexp.Compile(pattern)
	if err != nil {
		compileErr := fmt.Errorf("bad regexp condition %q: %w", pattern, err)
		return func(ctx context.Context, dc *domain.Context, rt domain.Runtime) (bool, error) {
			return false, compileErr
		}
	}
	return func(ctx context.Context, dc *domain.Context, rt domain.Runtime) (bool, error) {
		req, ok := dc.LastRequest()
		if !ok {
			return false, nil
		}
		return re.MatchString(req.Text), nil
	}
}

// Any fires when at least one of cs fires. Errors from individual
// conditions are returned only if no condition fired.
func Any(cs ...domain.Condition) domain.Condition {
	return func(ctx context.Context, dc *domain.Context, rt domain.Runtime) (bool, error) {
		var firstErr error
		for _, c := range cs {
			ok, err := c(ctx, dc, rt)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if ok {
				return true, nil
			}
		}
		return false, firstErr
	}
}

// All fires when every one of cs fires.
func All(cs ...domain.Condition) domain.Condition {
	return func(ctx context.Context, dc *domain.Context, rt domain.Runtime) (bool, error) {
		for _, c := range cs {
			ok, err := c(ctx, dc, rt)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}
}

// Not inverts c. Errors are passed through, not inverted.
func Not(c domain.Condition) domain.Condition {
	return func(ctx context.Context, dc *domain.Context, rt domain.Runtime) (bool, error) {
		ok, err := c(ctx, dc, rt)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}
