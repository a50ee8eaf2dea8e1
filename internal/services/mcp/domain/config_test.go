package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(value string) *string {
	return &value
}

func TestAmbientConfigTestMode(t *testing.T) {
	cases := map[string]bool{
		"":           true,
		"   ":        true,
		"test-key":   true,
		" test-key ": true,
		"real-key":   false,
	}
	for credential, want := range cases {
		assert.Equal(t, want, AmbientConfig{Credential: credential}.TestMode(), "credential %q", credential)
	}
}

func TestAmbientConfigApply(t *testing.T) {
	base := AmbientConfig{Endpoint: "http://flowise:3000", Credential: "base-key"}

	t.Run("both fields", func(t *testing.T) {
		got := base.Apply(ConfigOverride{Credential: strPtr("tenant-key"), Endpoint: strPtr("https://tenant.example")})
		assert.Equal(t, AmbientConfig{Endpoint: "https://tenant.example", Credential: "tenant-key"}, got)
	})
	t.Run("credential only", func(t *testing.T) {
		got := base.Apply(ConfigOverride{Credential: strPtr("tenant-key")})
		assert.Equal(t, "http://flowise:3000", got.Endpoint)
		assert.Equal(t, "tenant-key", got.Credential)
	})
	t.Run("empty values ignored", func(t *testing.T) {
		got := base.Apply(ConfigOverride{Credential: strPtr(" "), Endpoint: strPtr("")})
		assert.Equal(t, base, got)
	})
	t.Run("base untouched", func(t *testing.T) {
		_ = base.Apply(ConfigOverride{Credential: strPtr("other")})
		assert.Equal(t, "base-key", base.Credential)
	})
}

func TestConfigOverrideEmpty(t *testing.T) {
	assert.True(t, ConfigOverride{}.Empty())
	assert.True(t, ConfigOverride{Credential: strPtr("")}.Empty())
	assert.False(t, ConfigOverride{Endpoint: strPtr("http://x")}.Empty())
}

func TestEffectiveEndpoint(t *testing.T) {
	assert.Equal(t, "http://localhost:3000/api/v1", AmbientConfig{}.EffectiveEndpoint())
	assert.Equal(t, "https://cloud.flowiseai.com/api/v1", AmbientConfig{Endpoint: "https://cloud.flowiseai.com/"}.EffectiveEndpoint())
}
