package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	// Test case 1: Check if an existing environment variable is retrieved
	expectedValue := "test value"
	t.Setenv("TEST_KEY", expectedValue)

	actualValue := GetEnv("TEST_KEY", "fallback")
	if actualValue != expectedValue {
		t.Errorf("expected value to be [%s], but got [%s]", expectedValue, actualValue)
	}

	// Test case 2: Check if a missing environment variable falls back to the default value
	expectedValue = "fallback"
	actualValue = GetEnv("MISSING_KEY", expectedValue)
	if actualValue != expectedValue {
		t.Errorf("expected value to be [%s], but got [%s]", expectedValue, actualValue)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_HOUR", "18")
	assert.Equal(t, 18, GetEnvInt("TEST_HOUR", 21))

	t.Setenv("TEST_HOUR", "evening")
	assert.Equal(t, 21, GetEnvInt("TEST_HOUR", 21))

	assert.Equal(t, 21, GetEnvInt("MISSING_HOUR", 21))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("TEST_RATE", "0.5")
	assert.Equal(t, 0.5, GetEnvFloat("TEST_RATE", 0))

	t.Setenv("TEST_RATE", "fast")
	assert.Equal(t, 0.0, GetEnvFloat("TEST_RATE", 0))
}
