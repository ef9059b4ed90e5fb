package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sqlpilot/cli/internal/mode"
)

func TestPlural(t *testing.T) {
	assert.Equal(t, "0 rows", plural(0, "row"))
	assert.Equal(t, "1 row", plural(1, "row"))
	assert.Equal(t, "12 tables", plural(12, "table"))
}

func TestPromptFor(t *testing.T) {
	assert.Equal(t, "sqlpilot(sql)> ", promptFor(mode.IDE))
	assert.Equal(t, "sqlpilot(ask)> ", promptFor(mode.Simple))
}

func TestQueryText_JoinsArgs(t *testing.T) {
	got, err := queryText([]string{"SELECT", " 1 "})
	assert.NoError(t, err)
	assert.Equal(t, "SELECT  1", got)
}
