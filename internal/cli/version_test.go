package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/variantexplain/specwatch/internal/version"
)

func TestVersionCommand_Human(t *testing.T) {
	stdout, _, err := executeCommand("version")
	require.NoError(t, err)

	assert.Contains(t, stdout, "specwatch")
	assert.Contains(t, stdout, version.GetInfo().Version)
}

func TestVersionCommand_JSON(t *testing.T) {
	stdout, _, err := executeCommand("version", "--json")
	require.NoError(t, err)

	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))

	assert.Equal(t, version.GetInfo().Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Platform)
	assert.Contains(t, []string{version.SourceLdflags, version.SourceBuildInfo, version.SourceDefault}, info.Source)
	assert.Contains(t, stdout, `"source"`)
}

func TestVersionCommand_Short(t *testing.T) {
	stdout, _, err := executeCommand("version", "--short")
	require.NoError(t, err)

	assert.Equal(t, version.GetInfo().Version+"\n", stdout)
}

func TestVersionCommand_ShortAndJSONIsExitCode2(t *testing.T) {
	_, _, err := executeCommand("version", "--short", "--json")
	requireExitCode(t, err, 2)
}

func TestVersionCommand_NoArgs(t *testing.T) {
	_, _, err := executeCommand("version", "extra")
	require.Error(t, err)
}
