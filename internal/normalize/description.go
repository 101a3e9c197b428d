package normalize

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Description flattens the children of the first node in sel into one text
// blob. Runs of whitespace inside text nodes collapse to a single space,
// images become "[src]" lines, style and script subtrees are dropped, and a
// line break is opened before entering any other element unless the output
// already ends in a newline or a space (or is empty).
func Description(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}

	var buf textBuffer
	stack := pushChildren(nil, sel.Nodes[0])

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type {
		case html.TextNode:
			text := collapseSpace(n.Data)
			if strings.Trim(text, " ") == "" {
				continue
			}
			buf.write(text)

		case html.ElementNode:
			switch n.Data {
			case "style", "script":
				continue
			case "img":
				buf.image(n)
				continue
			}

			if buf.Len() > 0 {
				if (buf.last != '\n' && buf.last != ' ') || (n.Data == "br" && buf.last != '\n') {
					buf.write("\n")
				}
			}
			stack = pushChildren(stack, n)
		}
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

// DescriptionLines is the simpler line-per-text-node variant: every
// non-blank text node becomes its own trimmed line, images become "[src]"
// lines and style subtrees are dropped.
func DescriptionLines(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}

	var buf textBuffer
	stack := pushChildren(nil, sel.Nodes[0])

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type {
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.write(text)
				buf.write("\n")
			}

		case html.ElementNode:
			switch n.Data {
			case "style":
				continue
			case "img":
				buf.image(n)
				continue
			}
			stack = pushChildren(stack, n)
		}
	}

	return strings.TrimSpace(buf.String())
}

// textBuffer remembers the last byte written so the line-break rule never
// has to rescan the output.
type textBuffer struct {
	strings.Builder
	last byte
}

func (b *textBuffer) write(s string) {
	if s == "" {
		return
	}
	b.WriteString(s)
	b.last = s[len(s)-1]
}

func (b *textBuffer) image(n *html.Node) {
	src := attr(n, "src")
	if src == "" {
		return
	}
	b.write("[" + src + "]\n")
}

// pushChildren appends n's children in reverse so the next pop yields the
// first child.
func pushChildren(stack []*html.Node, n *html.Node) []*html.Node {
	start := len(stack)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		stack = append(stack, c)
	}
	for i, j := start, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return stack
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\uFEFF' {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
