package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/fairlens/fairlens/pkg/models"
)

// jsWalker accumulates control-flow metrics over a JavaScript or
// TypeScript syntax tree.
//
// Construct rules: if, for, for-in/of, while and do-while each add one
// decision point and one nesting level; explicit switch cases add a point
// (default does not); catch clauses add a point without nesting; logical
// && and || operators and ternaries add anonymous decision points.
type jsWalker struct {
	source         []byte
	decisionPoints int
	functionCount  int
	maxNesting     int
	nodes          []models.NodeTag
}

func (w *jsWalker) walk(n *sitter.Node, depth int) {
	if n == nil {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		w.visit(n.Child(i), depth)
	}
}

func (w *jsWalker) visit(n *sitter.Node, depth int) {
	switch n.Type() {
	case "if_statement":
		w.branch(models.TagIf)
		w.nest(n, depth)
	case "for_statement", "for_in_statement":
		w.branch(models.TagFor)
		w.nest(n, depth)
	case "while_statement":
		w.branch(models.TagWhile)
		w.nest(n, depth)
	case "do_statement":
		w.branch(models.TagDoWhile)
		w.nest(n, depth)
	case "switch_case":
		// switch_default is a distinct node type and adds nothing.
		w.branch(models.TagCase)
		w.walk(n, depth)
	case "catch_clause":
		w.branch(models.TagCatch)
		w.walk(n, depth)
	case "ternary_expression":
		w.decisionPoints++
		w.walk(n, depth)
	case "binary_expression", "logical_expression":
		if op := operatorOf(n); op == "&&" || op == "||" {
			w.decisionPoints++
		}
		w.walk(n, depth)
	case "function_declaration", "function_expression", "function",
		"arrow_function", "method_definition",
		"generator_function", "generator_function_declaration":
		w.functionCount++
		w.walk(n, depth)
	default:
		w.walk(n, depth)
	}
}

func (w *jsWalker) branch(tag models.NodeTag) {
	w.decisionPoints++
	w.nodes = append(w.nodes, tag)
}

func (w *jsWalker) nest(n *sitter.Node, depth int) {
	if depth+1 > w.maxNesting {
		w.maxNesting = depth + 1
	}
	w.walk(n, depth+1)
}

// operatorOf extracts the operator token from a binary expression.
func operatorOf(n *sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return op.Type()
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		switch t := n.Child(i).Type(); t {
		case "&&", "||":
			return t
		}
	}
	return ""
}
