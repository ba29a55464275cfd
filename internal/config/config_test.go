package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestLoadDefaults verifies defaults apply when the file sets nothing.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:1337", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, []int{10, 25, 50}, cfg.UI.PageSizes)
	assert.Equal(t, 10, cfg.UI.DefaultPageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.UI.SearchDebounce)

	assert.Equal(t, "percent", cfg.Pricing.Sale.DiscountMode)
	assert.Equal(t, 10.0, cfg.Pricing.Sale.Discount)
	assert.Equal(t, 7.0, cfg.Pricing.Sale.TaxRate)
	assert.Equal(t, "subtotal", cfg.Pricing.Sale.TaxBase)
	assert.Equal(t, "fixed", cfg.Pricing.POS.DiscountMode)
	assert.Equal(t, "net", cfg.Pricing.POS.TaxBase)
	assert.True(t, cfg.Pricing.POS.RoundWhole)

	assert.Equal(t, "file", cfg.Log.Output)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://pos.example.com
  timeout: 3s
ui:
  page_sizes: [5, 20]
  default_page_size: 20
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://pos.example.com", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, []int{5, 20}, cfg.UI.PageSizes)
	assert.Equal(t, 20, cfg.UI.DefaultPageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POSDASH_API_BASE_URL", "https://env.example.com")
	t.Setenv("POSDASH_AUTH_EMAIL", "clerk@example.com")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	assert.Equal(t, "clerk@example.com", cfg.Auth.Email)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "default size not offered",
			body: "ui:\n  page_sizes: [10, 25]\n  default_page_size: 50\n",
			want: "ui.default_page_size",
		},
		{
			name: "bad discount mode",
			body: "pricing:\n  sale:\n    discount_mode: bogus\n",
			want: "pricing.sale.discount_mode",
		},
		{
			name: "bad tax base",
			body: "pricing:\n  pos:\n    tax_base: gross\n",
			want: "pricing.pos.tax_base",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSessionPathExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := &Config{Auth: AuthConfig{SessionFile: "~/.config/posdash/session.json"}}
	assert.Equal(t, filepath.Join(home, ".config/posdash/session.json"), cfg.SessionPath())

	cfg.Auth.SessionFile = "/tmp/session.json"
	assert.Equal(t, "/tmp/session.json", cfg.SessionPath())
}
