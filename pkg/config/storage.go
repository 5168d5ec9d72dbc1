package config

import (
	"fmt"
	"strings"
)

// StorageConfig locates the data files owned by the shop.
type StorageConfig struct {
	ProductsFile string `koanf:"products"`
	SalesFile    string `koanf:"sales"`
	ExportFile   string `koanf:"export"`
}

// String returns a string representation of the storage configuration.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  products: %s\n", c.ProductsFile))
	b.WriteString(fmt.Sprintf("  sales: %s\n", c.SalesFile))
	b.WriteString(fmt.Sprintf("  export: %s\n", c.ExportFile))
	return b.String()
}

func (c *StorageConfig) Validate() error {
	if strings.TrimSpace(c.ProductsFile) == "" {
		return fmt.Errorf("products file is not configured")
	}
	if strings.TrimSpace(c.SalesFile) == "" {
		return fmt.Errorf("sales file is not configured")
	}
	if c.ProductsFile == c.SalesFile {
		return fmt.Errorf("products and sales must be different files: %s", c.ProductsFile)
	}
	if strings.TrimSpace(c.ExportFile) == "" {
		return fmt.Errorf("export file is not configured")
	}
	return nil
}
