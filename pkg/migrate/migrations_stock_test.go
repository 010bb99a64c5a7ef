package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopzen/shopzen-backend/pkg/migrate"
)

func TestStockSubscriptionsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_stock_subscriptions.sql")

	checks := []string{
		"CREATE TABLE stock_subscriptions",
		"REFERENCES products (id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX idx_stock_subscriptions_product_email",
		"CREATE INDEX idx_stock_subscriptions_created_at",
		"DROP TABLE stock_subscriptions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestStockAlertMarkersMigrationContainsCompositeKey(t *testing.T) {
	content := readMigration(t, "*_create_stock_alert_markers.sql")

	checks := []string{
		"CREATE TABLE stock_alert_markers",
		"PRIMARY KEY (store_id, product_id)",
		"last_alert_at TIMESTAMPTZ NOT NULL",
		"DROP TABLE stock_alert_markers",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
