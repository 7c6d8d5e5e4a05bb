package internal

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", GetRequestID(ctx))

	ctx = WithRequestID(ctx, "req_abc")
	assert.Equal(t, "req_abc", GetRequestID(ctx))
}

func TestNewRequestID(t *testing.T) {
	a := NewRequestID()
	b := NewRequestID()

	assert.True(t, strings.HasPrefix(a, "req_"))
	assert.Len(t, a, len("req_")+8)
	assert.NotEqual(t, a, b)
}

func TestUserRole(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetUserRole(ctx))
	assert.Equal(t, "agent", GetUserRole(WithUserRole(ctx, "agent")))
}
