package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGreetingName(t *testing.T) {
	assert.Equal(t, "Sarah", GreetingName("Sarah Johnson", "sarah@example.com"))
	assert.Equal(t, "James", GreetingName("", "james.johnson@example.com"))
	assert.Equal(t, "Kit", GreetingName("  ", "kit+pcps@example.com"))
	assert.Equal(t, "there", GreetingName("", "@example.com"))
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "ops@example.com", FormatAddress("", "ops@example.com"))
	assert.Equal(t, `"Family Policy Sync" <ops@example.com>`, FormatAddress("Family Policy Sync", "ops@example.com"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("sarah@example.com"))
	assert.False(t, Valid("Sarah <sarah@example.com>"))
	assert.False(t, Valid("not-an-address"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "s***@example.com", Mask("sarah@example.com"))
	assert.Equal(t, "***", Mask("nope"))
}
