package config

import (
	"path/filepath"
	"testing"

	"github.com/abgdnv/shopmanager/pkg/config/configloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load(t *testing.T) {
	t.Run("Success - legacy defaults", func(t *testing.T) {
		// given
		dir := t.TempDir()
		// when
		cfg, err := Load(
			configloader.WithConfigFile(filepath.Join(dir, "config.yaml")),
			configloader.WithEnvFile(filepath.Join(dir, ".env")))
		// then
		require.NoError(t, err)
		assert.Equal(t, "products.dat", cfg.Storage.ProductsFile)
		assert.Equal(t, "sales.csv", cfg.Storage.SalesFile)
		assert.Equal(t, "products_export.csv", cfg.Storage.ExportFile)
		assert.Equal(t, 1000, cfg.Inventory.Capacity)
		assert.Equal(t, "warn", cfg.Log.Level)
		assert.Contains(t, cfg.String(), "products: products.dat")
	})

	t.Run("Success - environment and overrides", func(t *testing.T) {
		// given
		dir := t.TempDir()
		t.Setenv("SHOP_INVENTORY_CAPACITY", "5")
		// when
		cfg, err := Load(
			configloader.WithConfigFile(filepath.Join(dir, "config.yaml")),
			configloader.WithEnvFile(filepath.Join(dir, ".env")),
			configloader.WithOverrides(map[string]any{"storage.sales": "ledger.csv"}))
		// then
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Inventory.Capacity)
		assert.Equal(t, "ledger.csv", cfg.Storage.SalesFile)
	})

	t.Run("Error - invalid log level", func(t *testing.T) {
		// given
		dir := t.TempDir()
		// when
		_, err := Load(
			configloader.WithConfigFile(filepath.Join(dir, "config.yaml")),
			configloader.WithEnvFile(filepath.Join(dir, ".env")),
			configloader.WithOverrides(map[string]any{"log.level": "loud"}))
		// then
		assert.Error(t, err)
	})
}
