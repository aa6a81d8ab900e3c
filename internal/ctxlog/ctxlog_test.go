package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, nil))
	ctx := WithLogger(context.Background(), logger)

	require.Same(t, logger, FromContext(ctx))
	FromContext(ctx).Info("hello", "param", "x")
	assert.Contains(t, buf.String(), "param=x")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestDiscard(t *testing.T) {
	ctx := Discard(context.Background())
	assert.NotSame(t, slog.Default(), FromContext(ctx))
}
