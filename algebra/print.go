package algebra

import (
	"strings"
)

// PrintTree renders n as an indented, pre-order tree, one node per line,
// matching the shape spec.md's print_tree operation describes: each
// node's own String() on its line, children indented two spaces deeper.
func PrintTree(n Node) string {
	var b strings.Builder
	printNode(&b, n, 0)
	return b.String()
}

func printNode(b *strings.Builder, n Node, depth int) {
	if n == nil {
		return
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.String())
	b.WriteByte('\n')
	for _, c := range n.Children() {
		printNode(b, c, depth+1)
	}
}
