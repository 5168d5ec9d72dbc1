package config

import (
	"fmt"
	"strings"
)

// InventoryConfig bounds the product table.
type InventoryConfig struct {
	Capacity int `koanf:"capacity"`
}

// String returns a string representation of the inventory configuration.
func (c *InventoryConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Inventory ---\n")
	b.WriteString(fmt.Sprintf("  capacity: %d\n", c.Capacity))
	return b.String()
}

func (c *InventoryConfig) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("invalid inventory capacity: %d", c.Capacity)
	}
	return nil
}
