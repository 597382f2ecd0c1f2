package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowListPolicy(t *testing.T) {
	policy := NewAllowListPolicy([]string{"RH@example.com", " gestora@example.com ", ""})

	assert.True(t, policy.IsAdmin("rh@example.com"))
	assert.True(t, policy.IsAdmin("RH@EXAMPLE.COM"))
	assert.True(t, policy.IsAdmin("gestora@example.com"))
	assert.False(t, policy.IsAdmin("maria@example.com"))
	assert.False(t, policy.IsAdmin(""))
}

func TestAllowListPolicy_Empty(t *testing.T) {
	policy := NewAllowListPolicy(nil)
	assert.False(t, policy.IsAdmin("rh@example.com"))
}
