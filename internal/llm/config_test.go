package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_TierModels(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, ProviderGemini, config.Provider)

	tests := []struct {
		tier ModelTier
		want string
	}{
		{tier: TierLite, want: "gemini-2.5-flash-lite"},
		{tier: TierStandard, want: "gemini-2.5-flash"},
		{tier: TierAdvanced, want: "gemini-2.5-pro"},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			assert.Equal(t, tt.want, config.GetModel(tt.tier))
		})
	}
}

func TestGetModel_FallbackChain(t *testing.T) {
	// An unknown tier falls back to standard, then lite.
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierStandard: "standard-model",
			TierLite:     "lite-model",
		},
	}
	assert.Equal(t, "standard-model", config.GetModel("experimental"))

	delete(config.Models, TierStandard)
	assert.Equal(t, "lite-model", config.GetModel("experimental"))

	delete(config.Models, TierLite)
	assert.Equal(t, "", config.GetModel("experimental"))
}

func TestWithModel_DoesNotMutateOriginal(t *testing.T) {
	config := DefaultConfig()
	custom := config.WithModel(TierAdvanced, "gemini-experimental")

	assert.Equal(t, "gemini-experimental", custom.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))

	// Untouched tiers carry over.
	assert.Equal(t, "gemini-2.5-flash-lite", custom.GetModel(TierLite))
	assert.Equal(t, config.Provider, custom.Provider)
}
