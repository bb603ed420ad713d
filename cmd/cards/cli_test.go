package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"sentencecards/internal/app"
	"sentencecards/internal/render"
)

// workspace runs init into a temp dir and points the global flags at it.
func workspace(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()

	ws := t.TempDir()
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, runInit(cmd, []string{ws}))

	configPath = filepath.Join(ws, "cards.yaml")
	contentRoot = filepath.Join(ws, "content")
	outDir = filepath.Join(ws, "public")
	t.Cleanup(func() {
		configPath, contentRoot, outDir = "cards.yaml", "", ""
		showLevel, showRaw, parseLevel, parseFormat = "", false, "", "yaml"
		cfg = nil
	})
	require.NoError(t, setup())
	return ws
}

func output(t *testing.T, run func(*cobra.Command, []string) error, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	require.NoError(t, run(cmd, args))
	return buf.String()
}

func TestInitCmd(t *testing.T) {
	ws := t.TempDir()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, runInit(cmd, []string{ws}))
	assert.FileExists(t, filepath.Join(ws, "cards.yaml"))
	assert.FileExists(t, filepath.Join(ws, "content", "groups.json"))
	assert.FileExists(t, filepath.Join(ws, "content", "groups", "greetings", "sentences.csv"))
	assert.Contains(t, buf.String(), "Wrote 3 sample file(s)")

	// Running again keeps edited files.
	csv := filepath.Join(ws, "content", "groups", "food", "sentences.csv")
	require.NoError(t, os.WriteFile(csv, []byte("prompt,chinese,level\n"), 0644))
	buf.Reset()
	require.NoError(t, runInit(cmd, []string{ws}))
	assert.Contains(t, buf.String(), "Wrote 0 sample file(s)")
	data, err := os.ReadFile(csv)
	require.NoError(t, err)
	assert.Equal(t, "prompt,chinese,level\n", string(data))
}

func TestBuildCmd(t *testing.T) {
	ws := workspace(t)

	out := output(t, runBuild)
	assert.Contains(t, out, "Built 2 groups (8 records, 7 pages, 0 audio files)")

	page, err := os.ReadFile(filepath.Join(ws, "public", "groups", "food", "advanced.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "This dish is too spicy, could you make it milder?")
	assert.NotContains(t, string(page), "The bill, please.")

	home, err := os.ReadFile(filepath.Join(ws, "public", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(home), `href="groups/greetings/"`)
}

func TestBuildCmd_IndexFailure(t *testing.T) {
	ws := workspace(t)
	require.NoError(t, os.Remove(filepath.Join(ws, "content", "groups.json")))

	err := runBuild(&cobra.Command{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build failed")
}

func TestGroupsCmd(t *testing.T) {
	workspace(t)
	out := output(t, runGroups)
	assert.Contains(t, out, "greetings")
	assert.Contains(t, out, "Ordering at a restaurant.")
	assert.Contains(t, out, "2 group(s)")
	assert.Less(t, strings.Index(out, "greetings"), strings.Index(out, "food"))
}

func TestShowCmd_Raw(t *testing.T) {
	workspace(t)
	showRaw = true
	showLevel = "intermediate"

	out := output(t, runShow, "greetings")
	assert.Contains(t, out, "# Greetings")
	assert.Contains(t, out, "See you tomorrow.")
	assert.NotContains(t, out, "long time")
	assert.Contains(t, out, "Food →")
}

func TestShowCmd_UnknownGroup(t *testing.T) {
	workspace(t)
	showRaw = true
	err := runShow(&cobra.Command{}, []string{"missing"})
	require.Error(t, err)
}

func TestShowCmd_EmptyGroupID(t *testing.T) {
	workspace(t)
	showRaw = true

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := runShow(cmd, []string{""})
	require.ErrorIs(t, err, app.ErrMissingGroupID)
	assert.Contains(t, buf.String(), render.MsgMissingGroup)
}

func TestShowCmd_BadLevel(t *testing.T) {
	workspace(t)
	showLevel = "expert"
	err := runShow(&cobra.Command{}, []string{"greetings"})
	require.Error(t, err)
}

func TestParseCmd(t *testing.T) {
	ws := workspace(t)
	file := filepath.Join(ws, "content", "groups", "food", "sentences.csv")

	parseFormat = "json"
	parseLevel = "intermediate"
	var got []parsedRecord
	require.NoError(t, json.Unmarshal([]byte(output(t, runParse, file)), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "The bill, please.", got[1].Fields["prompt"])
	assert.Equal(t, "intermediate", got[1].Level)

	parseFormat = "yaml"
	parseLevel = ""
	var all []parsedRecord
	require.NoError(t, yaml.Unmarshal([]byte(output(t, runParse, file)), &all))
	assert.Len(t, all, 3)

	parseFormat = "xml"
	assert.Error(t, runParse(&cobra.Command{}, []string{file}))
}

func TestParseCmd_MissingColumnsWarns(t *testing.T) {
	workspace(t)
	file := filepath.Join(t.TempDir(), "s.csv")
	require.NoError(t, os.WriteFile(file, []byte("prompt,level\nhi,advanced\n"), 0644))

	out := output(t, runParse, file)
	assert.Contains(t, out, "missing columns [chinese]")
}

func TestSetup_FlagOverrides(t *testing.T) {
	ws := workspace(t)
	assert.Equal(t, filepath.Join(ws, "content"), cfg.Content)
	assert.Equal(t, filepath.Join(ws, "public"), cfg.Output)
	assert.NotNil(t, logger)
}
