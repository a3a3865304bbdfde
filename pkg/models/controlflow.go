package models

// Language identifies a source language family.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangUnknown    Language = "unknown"
)

// Backend identifies which parsing strategy produced a summary. Consumers
// should discount precision for regex-derived summaries.
type Backend string

const (
	BackendTreeSitter Backend = "tree-sitter"
	BackendRegex      Backend = "regex"
)

// NodeTag identifies a control-flow construct kind. Tags are compared as
// sets by the divergence detector, so the same construct must always map
// to the same tag within a language family.
type NodeTag string

const (
	TagIf      NodeTag = "if"
	TagFor     NodeTag = "for"
	TagWhile   NodeTag = "while"
	TagDoWhile NodeTag = "do-while"
	TagCase    NodeTag = "case"
	TagCatch   NodeTag = "catch"
	TagTry     NodeTag = "try"
	TagExcept  NodeTag = "except"
	TagWith    NodeTag = "with"
)

// ControlFlowSummary is the normalized control-flow shape of one snippet.
// Created fresh per analysis call and never mutated afterward.
//
// With the tree-sitter backend DecisionPoints == len(ControlFlowNodes).
// The regex backend counts decision points without building a node list,
// so consumers must tolerate a shorter or empty ControlFlowNodes.
type ControlFlowSummary struct {
	Language         Language  `json:"language"`
	Backend          Backend   `json:"backend"`
	DecisionPoints   int       `json:"decision_points"`
	FunctionCount    int       `json:"function_count"`
	MaxNesting       int       `json:"max_nesting"`
	ControlFlowNodes []NodeTag `json:"control_flow_nodes"`
}

// TagSet returns the distinct tags present in the summary.
func (s *ControlFlowSummary) TagSet() map[NodeTag]bool {
	set := make(map[NodeTag]bool, len(s.ControlFlowNodes))
	for _, tag := range s.ControlFlowNodes {
		set[tag] = true
	}
	return set
}

// ComplexityScore is the simplified McCabe score for one snippet:
// decision points plus one baseline path. It keeps a reference to the
// summary it was derived from for detail reporting.
type ComplexityScore struct {
	Cyclomatic int                 `json:"cyclomatic"`
	Summary    *ControlFlowSummary `json:"summary"`
}

// SnippetDetail is the per-side breakdown attached to a comparison verdict.
type SnippetDetail struct {
	Complexity       int       `json:"complexity"`
	DecisionPoints   int       `json:"decision_points"`
	FunctionCount    int       `json:"function_count"`
	MaxNesting       int       `json:"max_nesting"`
	ControlFlowNodes []NodeTag `json:"control_flow_nodes"`
	Backend          Backend   `json:"backend"`
}

// DetailFor flattens a score into a reportable detail block.
func DetailFor(score ComplexityScore) SnippetDetail {
	d := SnippetDetail{Complexity: score.Cyclomatic}
	if score.Summary != nil {
		d.DecisionPoints = score.Summary.DecisionPoints
		d.FunctionCount = score.Summary.FunctionCount
		d.MaxNesting = score.Summary.MaxNesting
		d.ControlFlowNodes = score.Summary.ControlFlowNodes
		d.Backend = score.Summary.Backend
	}
	return d
}
