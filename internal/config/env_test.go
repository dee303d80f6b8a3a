package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvReaders(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	t.Setenv("X_STR", "val")
	t.Setenv("X_FLOAT", "3.14")
	t.Setenv("X_INT", "42")
	t.Setenv("X_DUR", "150ms")
	t.Setenv("X_BAD", "zzz")

	assert.Equal(t, "d", envString("X_EMPTY", "d"))
	assert.Equal(t, "val", envString("X_STR", "d"))
	assert.Equal(t, "d", envString("X_UNSET_FOR_TEST", "d"))

	assert.Equal(t, 3.14, envFloat("X_FLOAT", 0))
	assert.Equal(t, 1.5, envFloat("X_BAD", 1.5))
	assert.Equal(t, 42, envInt("X_INT", 0))
	assert.Equal(t, 7, envInt("X_BAD", 7))
	assert.Equal(t, 150*time.Millisecond, envDuration("X_DUR", time.Second))
	assert.Equal(t, 2*time.Second, envDuration("X_BAD", 2*time.Second))
}

func TestEnvBool(t *testing.T) {
	for i, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on"} {
		k := fmt.Sprintf("B_TRUE_%d", i)
		t.Setenv(k, v)
		assert.True(t, envBool(k, false), "%q", v)
	}
	for i, v := range []string{"0", "false", " no ", "N", "off"} {
		k := fmt.Sprintf("B_FALSE_%d", i)
		t.Setenv(k, v)
		assert.False(t, envBool(k, true), "%q", v)
	}
	t.Setenv("B_JUNK", "maybe")
	assert.True(t, envBool("B_JUNK", true))
	assert.False(t, envBool("B_JUNK", false))
}

func TestEnvList(t *testing.T) {
	t.Setenv("L_EMPTY", "")
	t.Setenv("L_SET", " a, ,b ,  c  ,")
	assert.Nil(t, envList("L_EMPTY"))
	assert.Equal(t, []string{"a", "b", "c"}, envList("L_SET"))
}

func TestNormalizeBasePath(t *testing.T) {
	for in, want := range map[string]string{
		"":         "/",
		" / ":      "/",
		"v1":       "/v1",
		"/v1/":     "/v1",
		"api/v1//": "/api/v1",
	} {
		assert.Equal(t, want, normalizeBasePath(in), "normalizeBasePath(%q)", in)
	}
}
