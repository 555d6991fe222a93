package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCmdRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	assert.True(t, names["serve"], "expected a serve subcommand")
	assert.True(t, names["index"], "expected an index subcommand")
	assert.True(t, names["version"], "expected a version subcommand")
	assert.True(t, names["logs"], "expected a logs subcommand")
}
