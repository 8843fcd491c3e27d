package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/quill/internal/model"
)

const maxHeadingLevel = 6

// DefaultCompilePath returns the default compile output path.
// Format: ~/Downloads/manuscript-YYYY-MM-DD.html
func DefaultCompilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("manuscript-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// CompileHTML renders the binder as a single HTML manuscript. Each node
// becomes a nested <section> with a heading; bodies are emitted as-is.
// Trunk attachments are not part of the manuscript.
func CompileHTML(p *model.Project, title string) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html>\n")
	b.WriteString("<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))

	writeNodes(&b, p.Binder, 1)

	// Footer
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")

	return b.String()
}

// writeNodes recursively writes sections for a list of sibling nodes.
func writeNodes(b *strings.Builder, nodes []*model.Node, depth int) {
	prefix := strings.Repeat("  ", depth)
	level := min(depth+1, maxHeadingLevel)

	for _, n := range nodes {
		fmt.Fprintf(b, "%s<section id=\"%s\">\n", prefix, html.EscapeString(n.ID))
		fmt.Fprintf(b, "%s  <h%d>%s</h%d>\n", prefix, level, html.EscapeString(n.Title), level)
		if n.Body != "" {
			fmt.Fprintf(b, "%s  %s\n", prefix, n.Body)
		}

		writeNodes(b, n.Children, depth+1)

		fmt.Fprintf(b, "%s</section>\n", prefix)
	}
}
