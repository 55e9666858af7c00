package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MISSINGSTAR_RESOLUTION", "400")
	t.Setenv("MISSINGSTAR_OUTPUT_DIR", t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStarsCommand(t *testing.T) {
	out, err := run(t, "stars", "--max-mag", "0.5", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Sirius")
	assert.Contains(t, out, "HIP")
	assert.NotContains(t, out, "Polaris")
}

func TestGenerateCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	out, err := run(t, "generate",
		"--date", "2024-01-15", "--time", "21:00", "--tz", "Asia/Seoul",
		"--lat", "37.5665", "--lon", "126.9780",
		"--n", "3", "--k", "4", "--seed", "7", "--out", dir,
		"--log-level", "error",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Seed: 7")
	assert.Equal(t, 4, strings.Count(out, "| mag="))
	for _, name := range []string{"problem.png", "answer.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	again, err := run(t, "generate",
		"--date", "2024-01-15", "--time", "21:00", "--tz", "Asia/Seoul",
		"--lat", "37.5665", "--lon", "126.9780",
		"--n", "3", "--k", "4", "--seed", "7", "--out", dir,
		"--log-level", "error",
	)
	require.NoError(t, err)
	assert.Equal(t, labels(out), labels(again))
}

func TestGenerateCommandRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad date", []string{"--date", "2024-13-40"}, "date"},
		{"bad timezone", []string{"--tz", "Mars/Olympus"}, "timezone"},
		{"too many", []string{"--n", "0", "--k", "50"}, "raise the magnitude threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"generate", "--log-level", "error", "--time", "21:00"}, tt.args...)
			_, err := run(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLogLevelFlag(t *testing.T) {
	var f logLevelFlag
	assert.Error(t, f.Set("loud"))
	assert.False(t, f.set)
	require.NoError(t, f.Set("warning"))
	assert.Equal(t, "warning", f.String())
	assert.Equal(t, "level", f.Type())
}

func labels(out string) []string {
	var got []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "HIP ") {
			got = append(got, line)
		}
	}
	return got
}
