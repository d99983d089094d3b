// Package document models a form as a mutable tree of sections, pages, and
// blocks. A Tree is an immutable snapshot: every mutation returns a new
// snapshot and an id that cannot be found is always a silent no-op that
// hands back the unchanged snapshot reference.
package document

// NodeType discriminates the three kinds of tree nodes.
type NodeType string

const (
	NodeTypeSection NodeType = "section"
	NodeTypePage    NodeType = "page"
	NodeTypeBlock   NodeType = "block"
)

// SubmitTarget is the terminal navigation target ending a form run.
const SubmitTarget = "submit"

// Severity grades a validation failure.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// NavigationRule routes a block to its successor when its condition holds.
// Conditions use the legacy infix dialect from pkg/condition; "true" denotes
// an unconditional default. Rule order is authoritative: hosts are expected
// to keep default rules last, the engines do not reorder.
type NavigationRule struct {
	Condition    string `json:"condition"`
	Target       string `json:"target"`
	IsPageTarget bool   `json:"isPageTarget,omitempty"`
	IsDefault    bool   `json:"isDefault,omitempty"`
}

// ValidationRule constrains a field value. When Field is set, the value of
// that other node is checked instead of the value under test. Value's shape
// depends on the operator (none, single scalar, array, field reference).
// Condition, when present, guards the rule: a false guard skips it.
type ValidationRule struct {
	Field     string   `json:"field,omitempty"`
	Operator  string   `json:"operator"`
	Value     any      `json:"value,omitempty"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity,omitempty"`
	Condition string   `json:"condition,omitempty"`
}

// Node is one entry in the document tree. Children are held by the Tree
// index, not embedded, so node records can be shared across snapshots.
type Node struct {
	ID              string
	Type            NodeType
	Name            string
	Label           string
	FieldName       string
	NavigationRules []NavigationRule
	ValidationRules []ValidationRule
}

// Patch carries the partial fields UpdateByID merges onto a node. Nil
// pointers leave the corresponding field untouched; the node id is never
// patched.
type Patch struct {
	Type            *NodeType
	Name            *string
	Label           *string
	FieldName       *string
	NavigationRules *[]NavigationRule
	ValidationRules *[]ValidationRule
}

func (p Patch) apply(n Node) Node {
	if p.Type != nil {
		n.Type = *p.Type
	}
	if p.Name != nil {
		n.Name = *p.Name
	}
	if p.Label != nil {
		n.Label = *p.Label
	}
	if p.FieldName != nil {
		n.FieldName = *p.FieldName
	}
	if p.NavigationRules != nil {
		n.NavigationRules = append([]NavigationRule(nil), (*p.NavigationRules)...)
	}
	if p.ValidationRules != nil {
		n.ValidationRules = append([]ValidationRule(nil), (*p.ValidationRules)...)
	}
	return n
}
