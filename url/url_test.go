package url

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_OriginForm(t *testing.T) {
	// Fragment and query are split off before params, and params
	// consumes everything after the first ';' verbatim (spec §4.1 steps
	// 2, 5, 6) — dot-segment removal only ever sees the part of the
	// input before the first ';'.
	u, err := Parse("/a/b/../c;p=2?q=1#frag")
	require.NoError(t, err)
	require.Equal(t, "/a/c", u.Path)
	require.True(t, u.HasQuery)
	require.Equal(t, "q=1", u.Query)
	require.True(t, u.HasParams)
	require.Equal(t, "p=2", u.Params)
	require.True(t, u.HasFragment)
	require.Equal(t, "frag", u.Fragment)
}

func TestParse_Asterisk(t *testing.T) {
	u, err := Parse("*")
	require.NoError(t, err)
	require.Equal(t, Asterisk, u.Path)
	require.Empty(t, u.Query)
	require.False(t, u.HasQuery)
}

func TestParse_AbsoluteURIStripsSchemeAndAuthority(t *testing.T) {
	u, err := Parse("http://example.com/foo/./bar")
	require.NoError(t, err)
	require.Equal(t, "/foo/bar", u.Path)
}

func TestParse_AuthorityDiscardedCleanly(t *testing.T) {
	// Regression for the documented authority-skip anomaly (spec §9):
	// bytes between "//" and the next "/" must not leak into the path.
	u, err := Parse("//host-with-stuff/x")
	require.NoError(t, err)
	require.Equal(t, "/x", u.Path)
}

func TestParse_NoLeadingSlashFails(t *testing.T) {
	_, err := Parse("http://example.com")
	require.ErrorIs(t, err, ErrEmpty)

	_, err = Parse("notaslash")
	require.ErrorIs(t, err, ErrNoLeadingSlash)
}

func TestParse_EmptyFails(t *testing.T) {
	_, err := Parse("")
	require.ErrorIs(t, err, ErrEmpty)
}

func TestSchemeCharsetIsCorrect(t *testing.T) {
	// The original source's scheme-charset helper had a typo making
	// almost any byte pass as a scheme character (spec §9); verify a
	// path-only input (starting with '/', never a scheme character) is
	// never mistaken for carrying a scheme even though it contains a
	// later ':' byte (here, inside the params segment).
	u, err := Parse("/foo;a:b")
	require.NoError(t, err)
	require.Equal(t, "/foo", u.Path)
	require.True(t, u.HasParams)
	require.Equal(t, "a:b", u.Params)
}
