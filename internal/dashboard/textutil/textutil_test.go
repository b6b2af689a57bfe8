package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	t.Parallel()

	// "e" followed by a combining acute accent composes to U+00E9.
	require.Equal(t, "Beyonc\u00e9", Clean("  Beyonce\u0301 \n"))
	require.Equal(t, "", Clean("   "))
	require.True(t, IsBlank("\t "))
	require.False(t, IsBlank(" x "))
}

func TestEnsureScheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "   ", want: ""},
		{in: "instagram.com/artist", want: "https://instagram.com/artist"},
		{in: "//soundcloud.com/artist", want: "https://soundcloud.com/artist"},
		{in: "http://example.com", want: "http://example.com"},
		{in: "https://open.spotify.com/artist/1", want: "https://open.spotify.com/artist/1"},
		{in: "mailto:me@example.com", want: "mailto:me@example.com"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.want, EnsureScheme(tc.in))
		})
	}
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	require.Empty(t, RenderMarkdown("  "))

	out := RenderMarkdown("**Producer** from Osaka\n<script>alert(1)</script>")
	require.Contains(t, out, "<strong>Producer</strong>")
	require.NotContains(t, out, "<script>")

	out = RenderMarkdown("[site](https://example.com)")
	require.True(t, strings.Contains(out, `rel="nofollow`), out)
}
