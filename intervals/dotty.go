package intervals

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

type nodeids[T any] struct {
	idTable map[*Node[T]]int
	max     int
}

func newtable[T any]() nodeids[T] {
	return nodeids[T]{
		idTable: make(map[*Node[T]]int),
		max:     1,
	}
}

func (ids nodeids[T]) find(node *Node[T]) int {
	return ids.idTable[node]
}

func (ids *nodeids[T]) alloc(node *Node[T]) int {
	if id := ids.find(node); id > 0 {
		return id
	}
	ids.idTable[node] = ids.max
	ids.max++
	return ids.max - 1
}

// Dot outputs the structure of the tree in Graphviz DOT format (for
// debugging purposes). Nodes show their effective interval, the number of
// items and, below, the stored delta and maxEnd.
func (t *Tree[T]) Dot(w io.Writer) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	io.WriteString(w, "strict digraph {\n")
	io.WriteString(w, "\tnode [fontname=Arial,fontsize=12];\n")
	ids := newtable[T]()
	nodelist, edgelist := "", ""
	nils := 0
	var visit func(n *Node[T], acc int)
	visit = func(n *Node[T], acc int) {
		acc += n.delta
		ID := ids.alloc(n)
		label := fmt.Sprintf("[%d,%d] ×%d\\nΔ%d max %d", n.start+acc, n.end+acc, len(n.refs),
			n.delta, n.maxEnd+acc)
		nodelist += fmt.Sprintf("\"%d\" [label=\"%s\" %s];\n", ID, label, nodeDotStyles(n))
		for _, child := range []*Node[T]{n.left, n.right} {
			if child == nil {
				nils++
				nodelist += fmt.Sprintf("\"nil%d\" %s;\n", nils, emptyNode())
				edgelist += fmt.Sprintf("\"%d\" -> \"nil%d\";\n", ID, nils)
				continue
			}
			visit(child, acc)
			edgelist += fmt.Sprintf("\"%d\" -> \"%d\";\n", ID, ids.find(child))
		}
	}
	if t.root != nil {
		visit(t.root, 0)
	}
	io.WriteString(w, nodelist)
	io.WriteString(w, edgelist)
	io.WriteString(w, "}\n")
}

func emptyNode() string {
	return "[label=\"\",color=black,shape=point]"
}

func nodeDotStyles[T any](n *Node[T]) string {
	s := ",style=filled,shape=box,fontcolor=white"
	if n.red {
		s += ",color=\"#cc0000\",fillcolor=\"#ee3333\""
	} else {
		s += ",color=black,fillcolor=\"#333333\""
	}
	if len(n.refs) > 1 {
		s += ",peripheries=2"
	}
	return s
}

// Dump writes an indented listing of the tree to w, one node per line, red
// nodes in red when w is a terminal.
func (t *Tree[T]) Dump(w io.Writer) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	redNode := color.New(color.FgRed, color.Bold)
	blackNode := color.New(color.Bold)
	var dump func(n *Node[T], acc int, depth int, prefix string)
	dump = func(n *Node[T], acc int, depth int, prefix string) {
		if n == nil {
			return
		}
		acc += n.delta
		c := blackNode
		if n.red {
			c = redNode
		}
		fmt.Fprintf(w, "%*s%s", 2*depth, "", prefix)
		c.Fprintf(w, "[%d,%d]", n.start+acc, n.end+acc)
		fmt.Fprintf(w, " %s items=%d max=%d\n", n.flags, len(n.refs), n.maxEnd+acc)
		dump(n.left, acc, depth+1, "L ")
		dump(n.right, acc, depth+1, "R ")
	}
	if t.root == nil {
		io.WriteString(w, "<empty>\n")
		return
	}
	dump(t.root, 0, 0, "")
}
