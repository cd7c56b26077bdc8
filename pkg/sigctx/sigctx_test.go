package sigctx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/niksmo/menu-admin/pkg/sigctx"
)

func TestWithSignalsFollowsParent(t *testing.T) {
	parent, cancelParent := context.WithCancel(t.Context())
	ctx, cancel := sigctx.WithSignals(parent)
	defer cancel()

	assert.NoError(t, ctx.Err())
	cancelParent()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
