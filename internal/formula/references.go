package formula

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// traversalKey generates a stable, canonical string representation for an
// hcl.Traversal.
func traversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// extractVariablesAndFunctions walks an expression for its free variable
// names and called function names. Both slices are sorted and unique.
// Only bare identifiers are valid variables; attribute or index access on a
// variable is rejected.
func extractVariablesAndFunctions(expr hclsyntax.Expression) ([]string, []string, error) {
	variables := make(map[string]struct{})
	for _, traversal := range expr.Variables() {
		if len(traversal) != 1 {
			return nil, nil, fmt.Errorf("unsupported reference '%s': only plain variable names are allowed", traversalKey(traversal))
		}
		variables[traversal.RootName()] = struct{}{}
	}

	functions := make(map[string]struct{})
	walkForFunctions(expr, functions)

	return sortedKeys(variables), sortedKeys(functions), nil
}

// walkForFunctions recursively walks the AST, looking only for function calls.
func walkForFunctions(expr hclsyntax.Expression, functions map[string]struct{}) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		functions[e.Name] = struct{}{}
		for _, arg := range e.Args {
			walkForFunctions(arg, functions)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, functions)
		walkForFunctions(e.RHS, functions)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, functions)
		walkForFunctions(e.TrueResult, functions)
		walkForFunctions(e.FalseResult, functions)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, functions)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, functions)
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
