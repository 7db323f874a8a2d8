package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMethod_CaseSensitive(t *testing.T) {
	m, err := ParseMethod("GET")
	require.NoError(t, err)
	require.Equal(t, Get, m)

	_, err = ParseMethod("get")
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestMethodString(t *testing.T) {
	require.Equal(t, "POST", Post.String())
	require.Equal(t, "PATCH", Patch.String())
}
