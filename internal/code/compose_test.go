package code

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_RedButtonOrder(t *testing.T) {
	b := Bundle{
		HTML: "<button id=b>Click</button>",
		CSS:  "#b{color:red}",
		JS:   "document.getElementById('b').onclick=()=>alert('hi')",
	}

	doc := Compose(b)

	style := strings.Index(doc, "<style>#b{color:red}</style>")
	body := strings.Index(doc, "<body>")
	button := strings.Index(doc, "<button id=b>Click</button>")
	script := strings.Index(doc, "<script>document.getElementById('b').onclick=()=>alert('hi')</script>")

	require.NotEqual(t, -1, style, "style block missing")
	require.NotEqual(t, -1, body, "body missing")
	require.NotEqual(t, -1, button, "markup missing")
	require.NotEqual(t, -1, script, "script block missing")
	assert.Less(t, style, body)
	assert.Less(t, body, button)
	assert.Less(t, button, script)
}

func TestCompose_DocumentShell(t *testing.T) {
	doc := Compose(Bundle{})

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, `<meta charset="UTF-8">`)
	assert.Contains(t, doc, `<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
	assert.Contains(t, doc, "<style></style>")
	assert.Contains(t, doc, "<script></script>")
}

func TestCompose_NoEscaping(t *testing.T) {
	b := Bundle{
		HTML: `<p class="x">a &amp; b</p>`,
		CSS:  `p::after{content:"<>"}`,
		JS:   `if (1 < 2 && "a") { console.log('</p>') }`,
	}
	doc := Compose(b)

	assert.Contains(t, doc, b.HTML)
	assert.Contains(t, doc, b.CSS)
	assert.Contains(t, doc, b.JS)
}

func TestBundle_WithIsolation(t *testing.T) {
	b := Bundle{HTML: "h", CSS: "c", JS: "j"}

	got := b.With(TabCSS, "changed")

	assert.Equal(t, Bundle{HTML: "h", CSS: "changed", JS: "j"}, got)
	assert.Equal(t, Bundle{HTML: "h", CSS: "c", JS: "j"}, b, "receiver must not be mutated")
}

func TestParseTab(t *testing.T) {
	tests := []struct {
		in      string
		want    Tab
		wantErr bool
	}{
		{"HTML", TabHTML, false},
		{"css", TabCSS, false},
		{" Js ", TabJS, false},
		{"python", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTab(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTab)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTab_TextRoundTrip(t *testing.T) {
	for _, tab := range Tabs {
		text, err := tab.MarshalText()
		require.NoError(t, err)

		var got Tab
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, tab, got)
	}
}
