package report

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// blockElements end a run of text when a rule description is flattened.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Li: true, atom.Pre: true, atom.Div: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.Tr: true, atom.Td: true,
}

// plainText flattens an HTML fragment, such as a rule description, into a
// single line of text.
func plainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return fragment
	}
	var sb strings.Builder
	for _, n := range nodes {
		collectText(&sb, n)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func collectText(sb *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(sb, c)
	}
	if n.Type == html.ElementNode && blockElements[n.DataAtom] {
		sb.WriteByte(' ')
	}
}

var titleCaser = cases.Title(language.English)

// label turns a metric key such as "comment_lines_density" into
// "Comment Lines Density".
func label(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

// truncateString truncates a string to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
