package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"DB_DSN", "TG_TOKEN", "LISTEN_ADDR", "UPLOAD_DIR", "PUBLIC_URL",
		"SESSION_CACHE_SIZE", "CHART_WIDTH", "CHART_HEIGHT"} {
		t.Setenv(k, "")
	}

	c := FromEnv()
	assert.Equal(t, ":8005", c.ListenAddr)
	assert.Equal(t, "uploads", c.UploadDir)
	assert.Equal(t, 256, c.SessionCacheSize)
	assert.Equal(t, 1024, c.ChartWidth)
	assert.Equal(t, 768, c.ChartHeight)
	assert.Empty(t, c.TgToken)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "clickhouse://localhost:9000/default")
	t.Setenv("TG_TOKEN", "123:abc")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("SESSION_CACHE_SIZE", "16")
	t.Setenv("CHART_WIDTH", "800")
	t.Setenv("CHART_HEIGHT", "not-a-number")

	c := FromEnv()
	assert.Equal(t, "clickhouse://localhost:9000/default", c.DbDsn)
	assert.Equal(t, "123:abc", c.TgToken)
	assert.Equal(t, ":9090", c.ListenAddr)
	assert.Equal(t, 16, c.SessionCacheSize)
	assert.Equal(t, 800, c.ChartWidth)
	assert.Equal(t, 768, c.ChartHeight)
}
