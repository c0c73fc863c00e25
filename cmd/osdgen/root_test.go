package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	require.NotNil(t, cmd)
	assert.Equal(t, "osdgen", cmd.Use)
	assert.Contains(t, cmd.Long, "Ceph OSDs")
}

func TestCommandPresence(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	commands := []string{"generate", "show", "nodes", "history", "version"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)

	debugFlag := cmd.PersistentFlags().Lookup("debug")
	require.NotNil(t, debugFlag)
	assert.Equal(t, "N", debugFlag.DefValue)
	assert.Empty(t, debugFlag.NoOptDefVal, "--debug takes a Y|N value")
}

func TestGenerateCommandFlags(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	generateCmd, _, err := cmd.Find([]string{"generate"})
	require.NoError(t, err)

	for _, name := range []string{
		"result-dir", "device-name-pattern", "device-size", "rotational",
		"journal-pattern", "min-journals-per-host", "reuse-old-data",
		"openstack-command", "dry-run", "json",
	} {
		assert.NotNil(t, generateCmd.Flags().Lookup(name), name)
	}

	assert.Equal(t, "/var/tmp/introspect_dir", generateCmd.Flags().Lookup("result-dir").DefValue)
	assert.Equal(t, "N", generateCmd.Flags().Lookup("reuse-old-data").DefValue)
	assert.Empty(t, generateCmd.Flags().Lookup("reuse-old-data").NoOptDefVal)
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	assert.NotNil(t, historyCmd.Flags().Lookup("result-dir"))
	assert.Nil(t, historyCmd.Flags().Lookup("device-size"))
}
