package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"lookup", "records", "export", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "company-profiler", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestLookupCommand_Flags(t *testing.T) {
	for _, name := range []string{"file", "output", "format", "no-export", "offline", "with-market"} {
		assert.NotNil(t, lookupCmd.Flags().Lookup(name), "lookup should have --%s flag", name)
	}
	assert.Equal(t, "o", lookupCmd.Flags().Lookup("output").Shorthand)
	assert.Equal(t, "false", lookupCmd.Flags().Lookup("offline").DefValue)
}

func TestRecordsCommand_Flags(t *testing.T) {
	flag := recordsCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "100", flag.DefValue)

	for _, name := range []string{"url", "offset", "json", "with-market"} {
		assert.NotNil(t, recordsCmd.Flags().Lookup(name), "records should have --%s flag", name)
	}
}

func TestExportCommand_Flags(t *testing.T) {
	for _, name := range []string{"output", "format", "url", "limit", "with-market"} {
		assert.NotNil(t, exportCmd.Flags().Lookup(name), "export should have --%s flag", name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
	assert.NotNil(t, serveCmd.Flags().Lookup("cors-origin"))
}
