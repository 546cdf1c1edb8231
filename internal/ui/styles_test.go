package ui

import (
	"testing"

	"github.com/Mohsinsiddi/w3vault/internal/bridge"
	"github.com/stretchr/testify/assert"
)

func TestMessageHelpers(t *testing.T) {
	tests := []struct {
		name   string
		got    string
		prefix string
		text   string
	}{
		{"success", Success("done"), "✓", "done"},
		{"warn", Warn("careful"), "⚠", "careful"},
		{"err", Err("failed"), "✗", "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.got, tt.prefix)
			assert.Contains(t, tt.got, tt.text)
		})
	}
	assert.Contains(t, Addr("0xABCDEF"), "0xABCDEF")
	assert.Contains(t, Val("1.5 WBTC"), "1.5 WBTC")
	assert.Contains(t, Meta("some metadata"), "some metadata")
	assert.Contains(t, Banner(), "w3vault")
}

func TestNoticeUsesLevel(t *testing.T) {
	ok := Notice(bridge.Notice{Level: bridge.LevelSuccess, Message: "Deposit successful!"})
	assert.Contains(t, ok, "✓")
	assert.Contains(t, ok, "Deposit successful!")

	bad := Notice(bridge.Notice{Level: bridge.LevelFailure, Message: "Query failed. Please try again."})
	assert.Contains(t, bad, "✗")
	assert.Contains(t, bad, "Query failed. Please try again.")
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "0xf39F…2266", TruncateAddr("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"))
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
	assert.Equal(t, "", TruncateAddr(""))
}
