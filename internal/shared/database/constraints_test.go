package database

import (
	"strings"
	"testing"
)

// The statements run unguarded on every boot, so each one must be idempotent
// and use syntax Postgres actually accepts. ALTER TABLE ... ADD CONSTRAINT has
// no IF NOT EXISTS form and once made startup fail unconditionally.
func TestConstraintStatementsAreIdempotent(t *testing.T) {
	t.Parallel()

	if len(constraintStatements) == 0 {
		t.Fatal("expected at least one constraint statement")
	}

	for _, stmt := range constraintStatements {
		normalized := strings.Join(strings.Fields(stmt), " ")

		if strings.Contains(normalized, "ADD CONSTRAINT") {
			t.Errorf("statement uses ADD CONSTRAINT, which cannot be made idempotent: %s", normalized)
		}
		if !strings.HasPrefix(normalized, "CREATE INDEX IF NOT EXISTS") {
			t.Errorf("statement is not an idempotent index creation: %s", normalized)
		}
	}
}
