package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.SetNormalizeFunc(NormalizeFlagName)
	flags.String(FlagResultDir, DefaultResultDir, "")
	flags.String(FlagDeviceNamePattern, "", "")
	flags.String(FlagDeviceSize, "", "")
	flags.String(FlagRotational, "", "")
	flags.String(FlagJournalPattern, "", "")
	flags.String(FlagMinJournals, "", "")
	flags.String(FlagReuseOldData, "N", "")
	flags.String(FlagDebug, "N", "")
	flags.Bool("dry-run", false, "")
	return flags
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
result_dir: /srv/osdgen
reuse_old_data: true
filters:
  device_name_pattern: "^sd"
  device_size_gb: 1800
  rotational: Y
  journal_pattern: nvme
  min_journals_per_host: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/osdgen", cfg.ResultDir)
	assert.True(t, cfg.ReuseOldData)
	assert.Equal(t, DefaultOpenStackCommand, cfg.OpenStackCommand)
	require.NoError(t, cfg.Validate())

	f := cfg.SelectionFilters()
	assert.Equal(t, "^sd", f.NamePattern)
	require.NotNil(t, f.SizeGB)
	assert.Equal(t, 1800.0, *f.SizeGB)
	require.NotNil(t, f.Rotational)
	assert.True(t, *f.Rotational)
	assert.Equal(t, "nvme", f.JournalPattern)
	assert.Equal(t, 2, f.MinJournals)
}

func TestLoadRotationalSpellings(t *testing.T) {
	for _, value := range []string{"false", "N", "no", "0"} {
		cfg, err := Load(writeConfig(t, "filters:\n  rotational: "+value+"\n"))
		require.NoError(t, err, value)
		require.NotNil(t, cfg.Filters.Rotational, value)
		assert.False(t, bool(*cfg.Filters.Rotational), value)
	}

	_, err := Load(writeConfig(t, "filters:\n  rotational: maybe\n"))
	assert.ErrorIs(t, err, ErrInvalidSetting)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, DefaultResultDir, cfg.ResultDir)
	assert.False(t, cfg.ReuseOldData)

	f := cfg.SelectionFilters()
	assert.Nil(t, f.SizeGB)
	assert.Nil(t, f.Rotational)
	assert.Zero(t, f.MinJournals)
}

func TestApplyFlagsOnlyChanged(t *testing.T) {
	cfg, err := Load(writeConfig(t, "result_dir: /srv/osdgen\nfilters:\n  journal_pattern: nvme\n"))
	require.NoError(t, err)

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--device-size", "900", "--rotational", "n", "--reuse-old-data", "Y"}))
	require.NoError(t, cfg.ApplyFlags(flags))

	assert.Equal(t, "/srv/osdgen", cfg.ResultDir)
	assert.Equal(t, "nvme", cfg.Filters.JournalPattern)
	require.NotNil(t, cfg.Filters.DeviceSizeGB)
	assert.Equal(t, 900.0, *cfg.Filters.DeviceSizeGB)
	require.NotNil(t, cfg.Filters.Rotational)
	assert.False(t, bool(*cfg.Filters.Rotational))
	assert.True(t, cfg.ReuseOldData)
}

func TestApplyFlagsPerNodeAlias(t *testing.T) {
	cfg := Defaults()
	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--min-journals-per-node", "3", "--debug", "yes"}))
	require.NoError(t, cfg.ApplyFlags(flags))

	require.NotNil(t, cfg.Filters.MinJournalsPerHost)
	assert.Equal(t, 3, *cfg.Filters.MinJournalsPerHost)
	assert.True(t, cfg.Debug)
}

func TestApplyFlagsInvalid(t *testing.T) {
	tests := [][]string{
		{"--min-journals-per-host", "0"},
		{"--min-journals-per-host", "two"},
		{"--device-size", "-5"},
		{"--device-size", "big"},
		{"--rotational", "sometimes"},
		{"--reuse-old-data=maybe"},
		{"--debug", "sometimes"},
	}
	for _, args := range tests {
		cfg := Defaults()
		flags := testFlags()
		require.NoError(t, flags.Parse(args))
		err := cfg.ApplyFlags(flags)
		assert.ErrorIs(t, err, ErrInvalidSetting, args)
	}
}

func TestValidate(t *testing.T) {
	zero := 0.0
	none := 0

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"bad name pattern", func(s *Settings) { s.Filters.DeviceNamePattern = "sd[" }},
		{"bad journal pattern", func(s *Settings) { s.Filters.JournalPattern = "(nvme" }},
		{"zero size", func(s *Settings) { s.Filters.DeviceSizeGB = &zero }},
		{"zero journals", func(s *Settings) { s.Filters.MinJournalsPerHost = &none }},
		{"empty result dir", func(s *Settings) { s.ResultDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidSetting)
		})
	}

	assert.NoError(t, Defaults().Validate())
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"Y", "y", "yes", "YES", "true", "True", "1"} {
		b, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.True(t, b, s)
	}
	for _, s := range []string{"N", "n", "no", "NOPE", "false", "FALSE", "0"} {
		b, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.False(t, b, s)
	}
	for _, s := range []string{"", "maybe", "2", "t"} {
		_, err := ParseBool(s)
		assert.ErrorIs(t, err, ErrInvalidSetting, s)
	}
}

func TestParsePositiveInt(t *testing.T) {
	n, err := ParsePositiveInt("4")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	for _, s := range []string{"0", "-1", "1.5", "x"} {
		_, err := ParsePositiveInt(s)
		assert.ErrorIs(t, err, ErrInvalidSetting, s)
	}
}
