package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// The safe* helpers wrap user callbacks so that both returned errors and
// panics surface as ordinary errors the pipeline can absorb. Stage hooks
// deliberately bypass these wrappers: their panics propagate.

func safeCondition(ctx context.Context, dc *domain.Context, rt domain.Runtime, c domain.Condition) (ok bool, err error) {
	if c == nil {
		return true, nil
	}
	defer recoverInto(&err)
	return c(ctx, dc, rt)
}

func safeResolve(ctx context.Context, dc *domain.Context, rt domain.Runtime, ref domain.LabelRef, defaultFlow string) (l domain.Label, err error) {
	defer recoverInto(&err)
	return ref.Resolve(ctx, dc, rt, defaultFlow)
}

func safeProcess(ctx context.Context, dc *domain.Context, rt domain.Runtime, p domain.Processor) (err error) {
	defer recoverInto(&err)
	return p(ctx, dc, rt)
}

func safeRender(ctx context.Context, dc *domain.Context, rt domain.Runtime, r domain.Response) (m domain.Message, err error) {
	defer recoverInto(&err)
	return r.Render(ctx, dc, rt)
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("callback panic: %v", r)
	}
}
