package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRootCmd(t *testing.T) {
	root := GetRootCmd()
	assert.Equal(t, "guardian", root.Use)

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "scan")
	assert.Contains(t, names, "watch")
	assert.Contains(t, names, "status")
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, version, GetVersion())
}
