// Package source fetches the person records a session displays.
//
// A Source performs one fetch and reports either the records or an error;
// it never retries. Error texts are matched by core.MapError, so the
// sentinel wording here is part of the contract.
package source

import (
	"context"
	"errors"

	"github.com/JonMunkholm/usertable/internal/core"
)

// Source loads the full record collection.
type Source interface {
	Fetch(ctx context.Context) ([]core.Record, error)
}

// Func adapts a plain function to Source.
type Func func(ctx context.Context) ([]core.Record, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context) ([]core.Record, error) {
	return f(ctx)
}

var (
	// ErrUpstreamStatus is wrapped when the upstream answers with a non-2xx status.
	ErrUpstreamStatus = errors.New("upstream returned status")

	// ErrDecode is wrapped when the upstream payload cannot be decoded.
	ErrDecode = errors.New("decode users payload")
)
