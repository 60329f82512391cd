package kissgate

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertOutputContains runs command with a buffer standing in for stdout
// and checks that every expected string appears in what it wrote.
func AssertOutputContains(t *testing.T, command func(stdout io.Writer), expectedOutputContains ...string) string {
	t.Helper()

	var out bytes.Buffer
	command(&out)

	var outputString = out.String()
	for _, expected := range expectedOutputContains {
		assert.Contains(t, outputString, expected)
	}

	return outputString
}
