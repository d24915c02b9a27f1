package xsd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// parseFixture parses an inline schema literal, failing the test on error.
func parseFixture(t *testing.T, name, src string) *Document {
	t.Helper()
	doc, err := ParseDocument(name, []byte(src))
	require.NoError(t, err)
	return doc
}
