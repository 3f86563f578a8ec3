package code

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestComposeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("compose is deterministic", prop.ForAll(
		func(html, css, js string) bool {
			b := Bundle{HTML: html, CSS: css, JS: js}
			return Compose(b) == Compose(b)
		},
		gen.AnyString(), gen.AnyString(), gen.AnyString(),
	))

	properties.Property("compose embeds every buffer verbatim", prop.ForAll(
		func(html, css, js string) bool {
			doc := Compose(Bundle{HTML: html, CSS: css, JS: js})
			return strings.Contains(doc, "<style>"+css+"</style>") &&
				strings.Contains(doc, html) &&
				strings.Contains(doc, "<script>"+js+"</script>")
		},
		gen.AlphaString(), gen.AlphaString(), gen.AlphaString(),
	))

	properties.Property("editing one buffer leaves the others untouched", prop.ForAll(
		func(html, css, js, value string, idx int) bool {
			b := Bundle{HTML: html, CSS: css, JS: js}
			tab := Tabs[idx]
			got := b.With(tab, value)
			for _, other := range Tabs {
				if other == tab {
					if got.Get(other) != value {
						return false
					}
					continue
				}
				if got.Get(other) != b.Get(other) {
					return false
				}
			}
			return true
		},
		gen.AnyString(), gen.AnyString(), gen.AnyString(), gen.AnyString(), gen.IntRange(0, len(Tabs)-1),
	))

	properties.TestingRun(t)
}
