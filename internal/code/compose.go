package code

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed document.tmpl
var documentTemplate string

// documentTmpl uses text/template so buffers are embedded verbatim. The preview
// frame's sandbox is the only isolation applied to the page.
var documentTmpl = template.Must(template.New("document").Parse(documentTemplate))

// Compose assembles b into a self-contained HTML5 document: the stylesheet in a
// <style> block, the markup in <body>, then the script in a trailing <script>
// block. Compose is pure; the same bundle always yields the same bytes.
func Compose(b Bundle) string {
	var buf bytes.Buffer
	// Execution cannot fail: the template only reads string fields.
	_ = documentTmpl.Execute(&buf, b)
	return buf.String()
}
