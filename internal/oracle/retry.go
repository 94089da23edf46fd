package oracle

import (
	"context"
	"time"

	megaerrors "github.com/L-Jun-Jie/megasampler/internal/errors"
)

// PlainOracle is implemented by an Oracle whose soft-assertion stack can be
// cleared without losing its hard constraints, so CheckWithRetry can retry
// a timed-out check under a "plain" solver configuration per spec.md §7's
// Timeout disposition: "retry once with plain solver (without soft
// constraints); if still unknown, abort epoch". Grounded on
// original_source/megasampler.cpp's retry-without-bias behavior.
type PlainOracle interface {
	Oracle
	ClearSoft()
}

// CheckWithRetry calls Check once; on Unknown (treated as a timeout per
// spec.md §7) it clears soft assertions if o supports PlainOracle and
// retries exactly once. If the retry is also Unknown, it returns a
// KindTimeout error rather than a result, so the Driver can abort the
// epoch as spec.md §7 requires.
func CheckWithRetry(ctx context.Context, o Oracle, timeout time.Duration) (Result, error) {
	res, err := o.Check(ctx, timeout)
	if err != nil {
		return Unknown, err
	}
	if res != Unknown {
		return res, nil
	}
	plain, ok := o.(PlainOracle)
	if !ok {
		return Unknown, nil
	}
	plain.ClearSoft()
	res, err = plain.Check(ctx, timeout)
	if err != nil {
		return Unknown, err
	}
	if res == Unknown {
		return Unknown, megaerrors.New(megaerrors.KindTimeout, "retry under plain solver also returned unknown")
	}
	return res, nil
}
