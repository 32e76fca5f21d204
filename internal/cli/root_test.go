package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/rentcheck/internal/emoji"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	old := struct {
		cfgFile, outputFmt, serviceURL string
		verbose, noColor, noEmoji      bool
		colorOff                       bool
	}{cfgFile, outputFmt, serviceURL, verbose, noColor, noEmoji, color.NoColor}
	oldGlobal := globalConfig

	t.Cleanup(func() {
		cfgFile, outputFmt, serviceURL = old.cfgFile, old.outputFmt, old.serviceURL
		verbose, noColor, noEmoji = old.verbose, old.noColor, old.noEmoji
		color.NoColor = old.colorOff
		globalConfig = oldGlobal
		emoji.SetEmojiDisabled(false)
	})

	cfgFile, outputFmt, serviceURL = "", "", ""
	verbose, noColor, noEmoji = false, false, false
	globalConfig = nil
}

func TestGetGlobalConfigAppliesFlags(t *testing.T) {
	resetGlobals(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service:\n  url: http://files.example:9000\noutput:\n  default_format: markdown\n"), 0o600))

	cfgFile = path
	serviceURL = "http://override.example:8000"
	noColor = true
	noEmoji = true

	cfg, err := GetGlobalConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://override.example:8000", cfg.Service.URL)
	assert.Equal(t, "never", cfg.Output.ColorMode)
	assert.True(t, emoji.IsEmojiDisabled())
	assert.False(t, useColor())
	assert.Equal(t, "markdown", getOutputFormat())

	again, err := GetGlobalConfig()
	require.NoError(t, err)
	assert.Same(t, cfg, again)
}

func TestGetGlobalConfigRejectsBadServiceURL(t *testing.T) {
	resetGlobals(t)
	cfgFile = filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("version: \"1.0\"\n"), 0o600))
	serviceURL = "not a url"

	_, err := GetGlobalConfig()
	assert.Error(t, err)
	assert.Nil(t, globalConfig)
}

func TestConfigureColor(t *testing.T) {
	resetGlobals(t)

	configureColor("always")
	assert.True(t, useColor())

	configureColor("never")
	assert.False(t, useColor())
}

func TestRootCommandWiring(t *testing.T) {
	cmd := NewRootCommand("1.2.3", "abc", "today")

	for _, name := range []string{"analyze", "watch", "config", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("service-url"))
}
