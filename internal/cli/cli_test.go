package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNoArgsShowsHelp(t *testing.T) {
	t.Parallel()

	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, CommandHelp, parsed.Command)
	require.True(t, parsed.ShowHelp)
}

func TestParseCommands(t *testing.T) {
	t.Parallel()

	for _, cmd := range []Command{CommandServe, CommandListen, CommandDevices, CommandDoctor, CommandVersion} {
		parsed, err := Parse([]string{string(cmd)})
		require.NoError(t, err)
		require.Equal(t, cmd, parsed.Command)
		require.False(t, parsed.ShowHelp)
	}
}

func TestParseConfigFlag(t *testing.T) {
	t.Parallel()

	parsed, err := Parse([]string{"--config", "/etc/voxtrace/config.conf", "serve"})
	require.NoError(t, err)
	require.Equal(t, CommandServe, parsed.Command)
	require.Equal(t, "/etc/voxtrace/config.conf", parsed.ConfigPath)
}

func TestParseConfigFlagRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Parse([]string{"--config"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "requires a path")
}

func TestParseProcessCollectsFiles(t *testing.T) {
	t.Parallel()

	parsed, err := Parse([]string{"process", "a.wav", "b.wav"})
	require.NoError(t, err)
	require.Equal(t, CommandProcess, parsed.Command)
	require.Equal(t, []string{"a.wav", "b.wav"}, parsed.Files)
}

func TestParseProcessRequiresFiles(t *testing.T) {
	t.Parallel()

	_, err := Parse([]string{"process"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one WAV file")
}

func TestParseProcessRejectsFlagsAfterCommand(t *testing.T) {
	t.Parallel()

	_, err := Parse([]string{"process", "--config", "x.conf"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected flag")
}

func TestParseRejectsTrailingArguments(t *testing.T) {
	t.Parallel()

	_, err := Parse([]string{"serve", "extra"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected arguments")
}

func TestParseUnknownCommand(t *testing.T) {
	t.Parallel()

	_, err := Parse([]string{"transcode"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown command")
}

func TestParseUnknownFlag(t *testing.T) {
	t.Parallel()

	_, err := Parse([]string{"--verbose"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown flag")
}

func TestParseHelpFlagWins(t *testing.T) {
	t.Parallel()

	parsed, err := Parse([]string{"--help"})
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
}

func TestParseVersionFlag(t *testing.T) {
	t.Parallel()

	parsed, err := Parse([]string{"--version"})
	require.NoError(t, err)
	require.Equal(t, CommandVersion, parsed.Command)
	require.False(t, parsed.ShowHelp)
}

func TestHelpTextMentionsCommands(t *testing.T) {
	t.Parallel()

	text := HelpText("voxtrace")
	for _, want := range []string{"voxtrace", "serve", "process", "listen", "devices", "doctor", "--config"} {
		require.Contains(t, text, want)
	}
}
