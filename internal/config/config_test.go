package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SCRAPE_RPS", "")
	t.Setenv("AMAZON_AFFILIATE_TAG", "giddy-20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "giddy-20", cfg.AmazonAffiliateTag)
	assert.Equal(t, 2.0, cfg.ScrapeRPS)
	assert.False(t, cfg.HasDatabase())
	assert.False(t, cfg.HasStorage())
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "eighty")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadRate(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("SCRAPE_RPS", "fast")

	_, err := Load()
	assert.Error(t, err)
}
