package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGitURL(t *testing.T) {
	assert.True(t, isGitURL("https://github.com/acme/widgets"))
	assert.True(t, isGitURL("git@github.com:acme/widgets.git"))
	assert.False(t, isGitURL("."))
	assert.False(t, isGitURL("/home/user/repo"))
	assert.False(t, isGitURL("../sibling-repo"))
}
