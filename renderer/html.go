package renderer

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

const pageHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="60">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2em auto; }
table { border-collapse: collapse; }
th, td { padding: 0.2em 0.8em; border-bottom: 1px solid #ddd; }
img { max-width: 100%%; }
</style>
</head>
<body>
`

const pageFooter = `</body>
</html>
`

// HTML converts a markdown report into a standalone HTML page.
func HTML(title, md string) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, pageHeader, html.EscapeString(title))
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return nil, fmt.Errorf("cannot convert markdown: %w", err)
	}
	buf.WriteString(pageFooter)
	return buf.Bytes(), nil
}
