package commands

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

	"github.com/maliciousblahaj/harmony-playground/internal/cli/config"
	"github.com/maliciousblahaj/harmony-playground/internal/project"
)

// setupProject writes the demo project into a temp dir and points the
// environment-fallback config at it.
func setupProject(t *testing.T) string {
	t.Helper()
	config.ResetConfig()

	dir := t.TempDir()
	path := filepath.Join(dir, "harmony.yaml")
	require.NoError(t, project.Default().Save(path))

	t.Setenv("HARMONY_PROJECT", path)
	t.Setenv("HARMONY_STATE_PATH", filepath.Join(dir, "state.db"))
	t.Setenv("HARMONY_OUTPUT", "markdown")

	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCheckCommand_Valid(t *testing.T) {
	path := setupProject(t)

	out, err := execute(t, NewCheckCommand())
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.Contains(t, out, "all resolved")
}

func TestCheckCommand_Cycle(t *testing.T) {
	setupProject(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	broken := &project.Project{
		Variables: map[string]string{
			"a": "3/2 b",
			"b": "2/3 a",
		},
	}
	require.NoError(t, broken.Save(path))

	_, err := execute(t, NewCheckCommand(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic dependency")
	assert.Contains(t, err.Error(), "->")
}

func TestCheckCommand_UnresolvedReference(t *testing.T) {
	setupProject(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	broken := &project.Project{
		Variables: map[string]string{"fifth": "3/2 ghost"},
	}
	require.NoError(t, broken.Save(path))

	_, err := execute(t, NewCheckCommand(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined variable")
	assert.Contains(t, err.Error(), "ghost")
}

func TestListCommand_Markdown(t *testing.T) {
	setupProject(t)

	out, err := execute(t, NewListCommand())
	require.NoError(t, err)

	// The demo project's roots and one derived interval.
	assert.Contains(t, out, "a3")
	assert.Contains(t, out, "220.0000 Hz")
	assert.Contains(t, out, "380.1933 Hz") // fifth = 3/2 * 253.4622
	assert.Contains(t, out, "A3")          // note name for 220 Hz
	assert.Contains(t, out, "# Oscillators")
}

func TestListCommand_JSON(t *testing.T) {
	setupProject(t)
	t.Setenv("HARMONY_OUTPUT", "json")

	out, err := execute(t, NewListCommand())
	require.NoError(t, err)

	var decoded struct {
		Variables []struct {
			Name      string  `json:"name"`
			Frequency float64 `json:"frequency"`
			Note      string  `json:"note"`
		} `json:"variables"`
		Oscillators []struct {
			Name string `json:"name"`
		} `json:"oscillators"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Len(t, decoded.Variables, 5)
	assert.Len(t, decoded.Oscillators, 5)

	freqs := map[string]float64{}
	for _, v := range decoded.Variables {
		freqs[v.Name] = v.Frequency
	}
	assert.InDelta(t, 220.0, freqs["a3"], 1e-9)
	assert.InDelta(t, 380.1933, freqs["fifth"], 1e-6)
}

func TestGraphCommand_Markdown(t *testing.T) {
	setupProject(t)

	out, err := execute(t, NewGraphCommand())
	require.NoError(t, err)

	assert.Contains(t, out, "# Dependency Graph")
	assert.Contains(t, out, "Level 0 (Literals)")
	assert.Contains(t, out, "## Level 1")
	assert.Contains(t, out, "depends on: a3")
}

func TestGraphCommand_JSON(t *testing.T) {
	setupProject(t)
	t.Setenv("HARMONY_OUTPUT", "json")

	out, err := execute(t, NewGraphCommand())
	require.NoError(t, err)

	var decoded struct {
		Levels []struct {
			Level     int `json:"level"`
			Variables []struct {
				Name string `json:"name"`
			} `json:"variables"`
		} `json:"levels"`
		TotalVariables int `json:"total_variables"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, 5, decoded.TotalVariables)
	require.Len(t, decoded.Levels, 2)
	assert.Len(t, decoded.Levels[0].Variables, 2) // a3, root
	assert.Len(t, decoded.Levels[1].Variables, 3) // sixth, unison, fifth
}

func TestInitCommand(t *testing.T) {
	config.ResetConfig()
	t.Setenv("HARMONY_OUTPUT", "markdown")

	dir := t.TempDir()
	target := filepath.Join(dir, "demo")

	out, err := execute(t, NewInitCommand(), target)
	require.NoError(t, err)
	assert.Contains(t, out, "created")

	p, err := project.Load(filepath.Join(target, "harmony.yaml"))
	require.NoError(t, err)
	assert.Len(t, p.Variables, 5)

	// A second init without --force must refuse to clobber.
	_, err = execute(t, NewInitCommand(), target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, NewInitCommand(), target, "--force")
	require.NoError(t, err)
}

func TestSessionsCommand_Empty(t *testing.T) {
	setupProject(t)
	t.Setenv("HARMONY_OUTPUT", "text")

	out, err := execute(t, NewSessionsCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions recorded yet")
}

func TestRenderCommand(t *testing.T) {
	setupProject(t)

	dir := t.TempDir()
	wavPath := filepath.Join(dir, "out.wav")

	out, err := execute(t, NewRenderCommand(), "-o", wavPath, "-d", "100ms")
	require.NoError(t, err)
	assert.Contains(t, out, "out.wav")

	data, err := os.ReadFile(wavPath)
	require.NoError(t, err)
	// 100 ms at 48 kHz mono 16-bit plus the 44-byte header.
	assert.Equal(t, 44+4800*2, len(data))
	assert.Equal(t, "RIFF", string(data[:4]))

	// The render session must have been recorded.
	t.Setenv("HARMONY_OUTPUT", "json")
	outSessions, err := execute(t, NewSessionsCommand())
	require.NoError(t, err)

	var sessions []struct {
		Kind   string `json:"kind"`
		Frames int64  `json:"frames"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(outSessions), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "render", sessions[0].Kind)
	assert.Equal(t, int64(4800), sessions[0].Frames)
	assert.Equal(t, "completed", sessions[0].Status)
}

func TestRenderCommand_InvalidDuration(t *testing.T) {
	setupProject(t)

	_, err := execute(t, NewRenderCommand(), "-d", "0s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duration must be positive")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCommand("1.2.3"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "Harmony v1.2.3"))
}
