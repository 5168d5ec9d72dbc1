package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Storage struct {
		Products string `koanf:"products"`
		Sales    string `koanf:"sales"`
	} `koanf:"storage"`
	Inventory struct {
		Capacity int `koanf:"capacity"`
	} `koanf:"inventory"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func (c *testConfig) Validate() error {
	if c.Inventory.Capacity <= 0 {
		return errors.New("capacity must be positive")
	}
	return nil
}

var testDefaults = map[string]any{
	"storage.products":   "products.dat",
	"storage.sales":      "sales.csv",
	"inventory.capacity": 1000,
	"log.level":          "info",
}

func Test_Load(t *testing.T) {
	t.Run("Success - defaults only", func(t *testing.T) {
		// given
		dir := t.TempDir()
		// when
		cfg, err := Load[*testConfig]("shoptest",
			WithConfigFile(filepath.Join(dir, "config.yaml")),
			WithEnvFile(filepath.Join(dir, ".env")),
			WithDefaults(testDefaults))
		// then
		require.NoError(t, err)
		assert.Equal(t, "products.dat", cfg.Storage.Products)
		assert.Equal(t, "sales.csv", cfg.Storage.Sales)
		assert.Equal(t, 1000, cfg.Inventory.Capacity)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("Success - sources in priority order", func(t *testing.T) {
		// given
		dir := t.TempDir()
		yamlFile := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(yamlFile, []byte("storage:\n  products: yaml.dat\n  sales: yaml.csv\ninventory:\n  capacity: 10\n"), 0o644))
		envFile := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("SHOPTEST_STORAGE_SALES=dotenv.csv\nOTHER_VALUE=ignored\n"), 0o644))
		t.Setenv("SHOPTEST_INVENTORY_CAPACITY", "20")
		// when
		cfg, err := Load[*testConfig]("shoptest",
			WithConfigFile(yamlFile),
			WithEnvFile(envFile),
			WithDefaults(testDefaults),
			WithOverrides(map[string]any{"log.level": "debug"}))
		// then
		require.NoError(t, err)
		assert.Equal(t, "yaml.dat", cfg.Storage.Products)
		assert.Equal(t, "dotenv.csv", cfg.Storage.Sales)
		assert.Equal(t, 20, cfg.Inventory.Capacity)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("Error - validation failed", func(t *testing.T) {
		// given
		dir := t.TempDir()
		// when
		_, err := Load[*testConfig]("shoptest",
			WithConfigFile(filepath.Join(dir, "config.yaml")),
			WithEnvFile(filepath.Join(dir, ".env")),
			WithDefaults(map[string]any{"inventory.capacity": 0}))
		// then
		assert.ErrorContains(t, err, "config validation failed")
	})
}
