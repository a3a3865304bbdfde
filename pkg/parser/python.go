package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/fairlens/fairlens/pkg/models"
)

// pythonWalker accumulates control-flow metrics over a Python syntax tree.
//
// Construct rules: if/elif, for, while and try each add one decision point
// and one nesting level; each except handler adds a decision point without
// deepening nesting; boolean chains add one point per operator; comparator
// chains (a < b < c) add one point per extra comparator; with blocks are
// tagged and deepen nesting but add no decision point. Boolean and
// comparator contributions are anonymous, so the node list does not map
// one-to-one onto the decision-point count.
type pythonWalker struct {
	decisionPoints int
	functionCount  int
	maxNesting     int
	nodes          []models.NodeTag
}

func (w *pythonWalker) walk(n *sitter.Node, depth int) {
	if n == nil {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		w.visit(n.Child(i), depth)
	}
}

func (w *pythonWalker) visit(n *sitter.Node, depth int) {
	switch n.Type() {
	case "if_statement", "elif_clause":
		w.branch(models.TagIf)
		w.nest(n, depth)
	case "for_statement":
		w.branch(models.TagFor)
		w.nest(n, depth)
	case "while_statement":
		w.branch(models.TagWhile)
		w.nest(n, depth)
	case "try_statement":
		w.branch(models.TagTry)
		w.nest(n, depth)
	case "except_clause":
		// Handlers branch but stay at the try block's depth.
		w.branch(models.TagExcept)
		w.walk(n, depth)
	case "with_statement":
		// Context managers deepen nesting and appear in the node list,
		// but add no decision point.
		w.nodes = append(w.nodes, models.TagWith)
		w.nest(n, depth)
	case "function_definition", "lambda":
		w.functionCount++
		w.walk(n, depth)
	case "boolean_operator":
		// Chains are left-associative, one node per and/or.
		w.decisionPoints++
		w.walk(n, depth)
	case "comparison_operator":
		if named := int(n.NamedChildCount()); named > 2 {
			w.decisionPoints += named - 2
		}
		w.walk(n, depth)
	default:
		w.walk(n, depth)
	}
}

func (w *pythonWalker) branch(tag models.NodeTag) {
	w.decisionPoints++
	w.nodes = append(w.nodes, tag)
}

func (w *pythonWalker) nest(n *sitter.Node, depth int) {
	if depth+1 > w.maxNesting {
		w.maxNesting = depth + 1
	}
	w.walk(n, depth+1)
}
