package storage

import (
	"strings"
	"testing"
)

func TestSchemaIsIdempotent(t *testing.T) {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Fatalf("statement is not idempotent: %s", stmt)
		}
	}
	for _, table := range []string{"parts", "travel"} {
		if !strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Fatalf("schema does not create %s", table)
		}
	}
}
