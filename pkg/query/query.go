// Package query parses the filter and order-by expressions of the EVA search API.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/scarnyc/spacewalks/pkg/query/lexer"
	"github.com/scarnyc/spacewalks/pkg/query/parser"
)

func ParseFilter(input string) ([]*parser.ValidCompareExpr, error) {
	if strings.TrimSpace(input) == "" {
		return make([]*parser.ValidCompareExpr, 0), nil
	}

	tokens, err := lexer.Tokenize(input)
	if err != nil {
		return nil, fmt.Errorf("error while lexing %s: %w", input, err)
	}

	ast, err := parser.Parse(tokens)
	if err != nil {
		return nil, fmt.Errorf("error while parsing %s: %w", input, err)
	}

	validExpressions := make([]*parser.ValidCompareExpr, 0, len(ast.Exprs))

	for _, expr := range ast.Exprs {
		ve, err := parser.ValidateExpression(expr)
		if err != nil {
			return nil, fmt.Errorf("error while validating %s: %w", input, err)
		}

		validExpressions = append(validExpressions, ve)
	}

	return validExpressions, nil
}

var orderByClause = regexp.MustCompile(
	`^(?i:(?:eva|evas|attribute|attributes|attr)\.)?("[^"]+"|` + "`[^`]+`" + `|'[^']+'|\w+)(?i:\s+(ASC|DESC))?$`,
)

type OrderBy struct {
	Field      parser.Field
	Descending bool
}

// ParseOrderBy parses clauses such as "duration DESC" or "eva.date".
func ParseOrderBy(clauses []string) ([]OrderBy, error) {
	orders := make([]OrderBy, 0, len(clauses))

	for _, clause := range clauses {
		components := orderByClause.FindStringSubmatch(strings.TrimSpace(clause))
		if components == nil {
			return nil, fmt.Errorf("invalid order by clause %q", clause)
		}

		field, err := parser.ParseField(strings.Trim(components[1], "`\"'"))
		if err != nil {
			return nil, fmt.Errorf("invalid order by clause %q: %w", clause, err)
		}

		orders = append(orders, OrderBy{
			Field:      field,
			Descending: strings.EqualFold(components[2], "DESC"),
		})
	}

	return orders, nil
}
