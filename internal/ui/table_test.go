package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit(t *testing.T) {
	assert.Equal(t, "abc  ", fit("abc", 5))
	assert.Equal(t, "abcde", fit("abcde", 5))
	assert.Equal(t, "abcd…", fit("abcdefgh", 5))
	assert.Equal(t, 6, lipgloss.Width(fit("0xf3…66", 6)))
	assert.Equal(t, "✓   ", fit("✓", 4))
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{{Title: "NAME", Width: 8}, {Title: "ADDRESS", Width: 12}})
	tbl.AddRow(Row{"main", "0xf39F…2266"})
	tbl.AddRow(Row{"a-very-long-name"})

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[0], "ADDRESS")
	assert.Contains(t, lines[1], "--------")
	assert.Contains(t, lines[2], "main")
	assert.Contains(t, lines[2], "0xf39F…2266")
	assert.Contains(t, lines[3], "a-very-…")
}

func TestTableEmpty(t *testing.T) {
	out := NewTable([]Column{{Title: "URL", Width: 10}}).Render()
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestKeyValueBlock(t *testing.T) {
	out := KeyValueBlock("Vault", [][2]string{{"Balance", "2 WBTC"}, {"Beneficiary", "0xabc"}})
	assert.Contains(t, out, "Vault")
	assert.Contains(t, out, "Balance:")
	assert.Contains(t, out, "2 WBTC")
	assert.Contains(t, out, "Beneficiary:")
	assert.Contains(t, out, "0xabc")
}
