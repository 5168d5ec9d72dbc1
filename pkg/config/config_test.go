package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_StorageConfig_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       StorageConfig
		expectErr bool
	}{
		{name: "Valid", cfg: StorageConfig{ProductsFile: "products.dat", SalesFile: "sales.csv", ExportFile: "products_export.csv"}},
		{name: "Missing products", cfg: StorageConfig{SalesFile: "sales.csv", ExportFile: "x.csv"}, expectErr: true},
		{name: "Missing sales", cfg: StorageConfig{ProductsFile: "products.dat", ExportFile: "x.csv"}, expectErr: true},
		{name: "Same file", cfg: StorageConfig{ProductsFile: "data", SalesFile: "data", ExportFile: "x.csv"}, expectErr: true},
		{name: "Missing export", cfg: StorageConfig{ProductsFile: "products.dat", SalesFile: "sales.csv"}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func Test_InventoryConfig_Validate(t *testing.T) {
	assert.NoError(t, (&InventoryConfig{Capacity: 1000}).Validate())
	assert.Error(t, (&InventoryConfig{Capacity: 0}).Validate())
	assert.Error(t, (&InventoryConfig{Capacity: -3}).Validate())
}

func Test_LogConfig_Validate(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		assert.NoError(t, (&LogConfig{Level: level}).Validate(), level)
	}
	assert.Error(t, (&LogConfig{Level: "verbose"}).Validate())
}
