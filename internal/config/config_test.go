package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsZeroValue(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.conf"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radae-decoder.conf")
	want := Config{
		Input: "hw:1,0",
		Output: "hw:2,0",
		TXInput: "hw:3,0",
		TXOutput: "hw:4,0",
		TXLevel: 80,
		MicLevel: 50,
		BPFEnabled: true,
		Callsign: "VK3XYZ",
		Gridsquare: "QF22",
	}
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_SkipsCommentsAndBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radae-decoder.conf")
	content := "# a comment\n\ncallsign=VK3ABC\n \ntx_level=42\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "VK3ABC", cfg.Callsign)
	assert.Equal(t, 42, cfg.TXLevel)
}

func TestPercentMappings(t *testing.T) {
	assert.InDelta(t, 32767.0, TXScaleFromPercent(100), 0.01)
	assert.InDelta(t, 0.0, TXScaleFromPercent(0), 0.01)
	assert.InDelta(t, 2.0, MicGainFromPercent(100), 0.01)
	assert.InDelta(t, 1.0, MicGainFromPercent(50), 0.01)
}
