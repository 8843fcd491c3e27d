package importer

import (
	"io"
	"strings"

	"github.com/nikbrunner/quill/internal/model"
	"golang.org/x/net/html"
)

// Section is a heading from an HTML manuscript together with the markup
// that follows it up to the next heading.
type Section struct {
	Title    string
	Level    int // 1 for <h1> through 6 for <h6>
	Body     string
	Children []*Section
}

const untitledSection = "Untitled"

// ParseOutline splits an HTML document into sections by its headings.
// Deeper headings nest under the closest shallower one. Markup before the
// first heading goes into an "Untitled" section.
func ParseOutline(r io.Reader) ([]*Section, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var roots []*Section
	var stack []*Section // open sections, shallowest first
	var preamble *Section

	current := func() *Section {
		if len(stack) > 0 {
			return stack[len(stack)-1]
		}
		if preamble == nil {
			preamble = &Section{Title: untitledSection, Level: 1}
			roots = append(roots, preamble)
		}
		return preamble
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			tag := strings.ToLower(n.Data)

			if level := headingLevel(tag); level > 0 {
				s := &Section{Title: getTextContent(n), Level: level}
				if s.Title == "" {
					s.Title = untitledSection
				}

				// Close sections at the same or deeper level
				for len(stack) > 0 && stack[len(stack)-1].Level >= level {
					stack = stack[:len(stack)-1]
				}
				if len(stack) > 0 {
					parent := stack[len(stack)-1]
					parent.Children = append(parent.Children, s)
				} else {
					roots = append(roots, s)
				}
				stack = append(stack, s)
				return // Don't recurse into headings
			}

			switch tag {
			case "head", "script", "style", "title":
				return
			case "html", "body", "div", "section", "article", "main", "header", "footer":
				// Transparent containers - headings may be inside
			default:
				appendMarkup(current(), n)
				return
			}

		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				s := current()
				s.Body += "<p>" + html.EscapeString(strings.TrimSpace(n.Data)) + "</p>"
			}
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return roots, nil
}

// Apply creates binder nodes for sections under parentID (nil = root).
// Sections with subsections become folders. Returns the number of nodes
// created.
func Apply(p *model.Project, parentID *string, sections []*Section) (int, error) {
	created := 0
	for _, s := range sections {
		n, err := p.AddNode(parentID, len(s.Children) > 0)
		if err != nil {
			return created, err
		}
		created++

		title, body := s.Title, s.Body
		p.UpdateNode(n.ID, model.NodePatch{Title: &title, Body: &body})

		id := n.ID
		sub, err := Apply(p, &id, s.Children)
		created += sub
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func appendMarkup(s *Section, n *html.Node) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return
	}
	s.Body += b.String()
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}
