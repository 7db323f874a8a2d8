package url

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemoveDotSegments(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"/a/b/c/./../../g", "/a/g"},
		{"/mid/content=5/../6", "/mid/6"},
		{"/", "/"},
		{"/./", "/"},
		{"/../", "/"},
		{"/a/", "/a/"},
		{"/a/b/..", "/a/"},
		{"/a/.", "/a/"},
		{"/a", "/a"},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			require.Equal(t, c.want, RemoveDotSegments(c.in))
		})
	}
}
