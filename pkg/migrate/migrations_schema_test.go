package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/stockroom-backend/pkg/migrate"
)

func TestInitSchemaContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE stock_entries",
		"CHECK (quantity_on_hand >= 0)",
		"CHECK (reorder_level >= 0)",
		"product_id uuid PRIMARY KEY REFERENCES products (id) ON DELETE CASCADE",
		"order_id uuid NOT NULL REFERENCES orders (id) ON DELETE CASCADE",
		"product_id uuid NOT NULL REFERENCES products (id)",
		"CHECK (quantity >= 1)",
		"DROP TABLE stock_entries;",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
