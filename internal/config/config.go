package config

import (
	"strings"

	"github.com/abgdnv/shopmanager/pkg/config"
	"github.com/abgdnv/shopmanager/pkg/config/configloader"
)

// AppName prefixes environment variables, e.g. SHOP_STORAGE_PRODUCTS.
const AppName = "shop"

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	Storage   config.StorageConfig   `koanf:"storage"`
	Inventory config.InventoryConfig `koanf:"inventory"`
	Log       config.LogConfig       `koanf:"log"`
}

// Defaults reproduces the file names and limits of the legacy shop manager.
func Defaults() map[string]any {
	return map[string]any{
		"storage.products":   "products.dat",
		"storage.sales":      "sales.csv",
		"storage.export":     "products_export.csv",
		"inventory.capacity": 1000,
		"log.level":          "warn",
	}
}

// Load reads the configuration using the standard sources plus the given overrides.
func Load(opts ...configloader.Option) (*Config, error) {
	opts = append([]configloader.Option{configloader.WithDefaults(Defaults())}, opts...)
	return configloader.Load[*Config](AppName, opts...)
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.Storage.String())
	b.WriteString(c.Inventory.String())
	b.WriteString(c.Log.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Inventory.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}
