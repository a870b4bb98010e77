package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(args ...string) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.Execute()
}

func TestRootCmd_Subcommands(t *testing.T) {
	var names []string
	for _, c := range newRootCmd().Commands() {
		names = append(names, c.Name())
	}

	assert.Subset(t, names, []string{"up", "down", "version"})
}

func TestDownCmd_StepsDefault(t *testing.T) {
	down := newDownCmd(new(string))

	flag := down.Flags().Lookup("steps")
	require.NotNil(t, flag)
	assert.Equal(t, "1", flag.DefValue)
}

func TestDownCmd_RejectsNonPositiveSteps(t *testing.T) {
	err := execute("down", "--steps", "0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--steps")
}

func TestUpCmd_RejectsArguments(t *testing.T) {
	assert.Error(t, execute("up", "extra"))
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	assert.Error(t, execute("sideways"))
}
