package schema

import (
	"fmt"

	"gorm.io/gorm"
)

// CreateAll executes the translated DDL for every canonical table against
// the given database. Any failure aborts immediately; the caller treats it
// as startup-fatal.
func CreateAll(db *gorm.DB, d Dialect, prefix string) error {
	if !d.Valid() {
		return fmt.Errorf("schema: unknown dialect %q", d)
	}
	for _, stmt := range TranslateAll(d, prefix) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}
