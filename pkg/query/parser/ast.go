package parser

import (
	"fmt"
	"strings"
)

// Value is the right-hand side of a comparison.
type Value interface {
	value() any
}

type NumberExpr struct {
	Value float64
}

func (n NumberExpr) value() any { return n.Value }

func (n NumberExpr) String() string { return fmt.Sprintf("%g", n.Value) }

type StringExpr struct {
	Value string
}

func (s StringExpr) value() any { return s.Value }

func (s StringExpr) String() string { return fmt.Sprintf("%q", s.Value) }

type StringListExpr struct {
	Values []string
}

func (s StringListExpr) value() any { return s.Values }

func (s StringListExpr) String() string {
	quoted := make([]string, 0, len(s.Values))
	for _, v := range s.Values {
		quoted = append(quoted, fmt.Sprintf("%q", v))
	}

	return "(" + strings.Join(quoted, ", ") + ")"
}

// Identifier is an optionally prefixed key, like eva.duration.
type Identifier struct {
	Prefix string
	Key    string
}

type OperatorKind int

const (
	Equals OperatorKind = iota
	NotEquals
	Less
	LessEquals
	Greater
	GreaterEquals
	Like
	ILike
	In
	NotIn
)

//nolint:gochecknoglobals
var operatorSymbols = [...]string{
	Equals:        "=",
	NotEquals:     "!=",
	Less:          "<",
	LessEquals:    "<=",
	Greater:       ">",
	GreaterEquals: ">=",
	Like:          "LIKE",
	ILike:         "ILIKE",
	In:            "IN",
	NotIn:         "NOT IN",
}

// String returns the SQL spelling of the operator.
func (op OperatorKind) String() string {
	if op < 0 || int(op) >= len(operatorSymbols) {
		return fmt.Sprintf("OperatorKind(%d)", int(op))
	}

	return operatorSymbols[op]
}

// IsComparison reports whether op orders its operands.
func (op OperatorKind) IsComparison() bool {
	return op <= GreaterEquals
}

// a operator b
type CompareExpr struct {
	Left     Identifier
	Operator OperatorKind
	Right    Value
}

type AndExpr struct {
	Exprs []*CompareExpr
}
