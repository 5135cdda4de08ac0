package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationRunner_StepsAreIdempotent(t *testing.T) {
	runner := NewRunner()
	assert.Equal(t, "1.0.0", runner.Version())

	steps := runner.steps()
	assert.Len(t, steps, 3)
	for _, s := range steps {
		assert.Contains(t, s.sql, "IF NOT EXISTS", s.name)
	}
	assert.True(t, strings.Contains(steps[1].sql, "REFERENCES slice_runs(id)"))
}
