package requestid

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// Header carries the request id in both directions.
const Header = "X-Request-Id"

type ctxKey struct{}

func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func Get(ctx context.Context) string {
	v := ctx.Value(ctxKey{})
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// New returns 32 lowercase hex characters.
func New() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "00000000000000000000000000000000"
	}
	return hex.EncodeToString(b[:])
}
