package tools

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShowTableWriter(t *testing.T) {
	var buf bytes.Buffer
	ShowTableWriter(&buf,
		[]string{"Build", "Launches"},
		[][]string{
			{"5f2d1c3a", "3"},
			{"9a8b7c6d", "unlimited"},
		})

	out := buf.String()
	assert.Contains(t, out, "BUILD")
	assert.Contains(t, out, "LAUNCHES")
	assert.Contains(t, out, "5f2d1c3a")
	assert.Contains(t, out, "unlimited")
}

func TestShowTableWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	ShowTableWriter(&buf, []string{"Build"}, nil)
	assert.Contains(t, buf.String(), "BUILD")
}
