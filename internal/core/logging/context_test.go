package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetCommand(ctx))
	assert.Empty(t, GetTaskID(ctx))

	ctx = WithCommand(ctx, "task add")
	ctx = WithTaskID(ctx, "0190f1c2")
	assert.Equal(t, "task add", GetCommand(ctx))
	assert.Equal(t, "0190f1c2", GetTaskID(ctx))
}
