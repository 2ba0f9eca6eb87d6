package params

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// traversalKey renders a traversal back to source form, e.g. location.region.
func traversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// checkReferences reports every variable and function used by attrs that
// evalCtx does not provide. Each problem is reported, not only the first.
func checkReferences(attrs hcl.Attributes, evalCtx *hcl.EvalContext) error {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		traversals, funcs := extractReferencesAndFunctions(attrs[name].Expr)
		for _, t := range traversals {
			if _, ok := evalCtx.Variables[t.RootName()]; !ok {
				errs = append(errs, fmt.Errorf("parameter %q references unknown variable %s", name, traversalKey(t)))
			}
		}
		for _, fn := range funcs {
			if _, ok := evalCtx.Functions[fn]; !ok {
				errs = append(errs, fmt.Errorf("parameter %q calls unknown function %s", name, fn))
			}
		}
	}
	return errors.Join(errs...)
}

// extractReferencesAndFunctions returns the unique variable traversals and
// function names used by expr, both sorted.
func extractReferencesAndFunctions(expr hcl.Expression) ([]hcl.Traversal, []string) {
	traversals := make(map[string]hcl.Traversal)
	functions := make(map[string]struct{})

	for _, t := range expr.Variables() {
		traversals[traversalKey(t)] = t
	}
	if syntaxExpr, ok := expr.(hclsyntax.Expression); ok {
		walkForFunctions(syntaxExpr, functions)
	}

	keys := make([]string, 0, len(traversals))
	for k := range traversals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	traversalSlice := make([]hcl.Traversal, 0, len(keys))
	for _, k := range keys {
		traversalSlice = append(traversalSlice, traversals[k])
	}

	functionSlice := make([]string, 0, len(functions))
	for f := range functions {
		functionSlice = append(functionSlice, f)
	}
	sort.Strings(functionSlice)

	return traversalSlice, functionSlice
}

// walkForFunctions collects function calls, which Variables() does not
// report.
func walkForFunctions(expr hclsyntax.Expression, functions map[string]struct{}) {
	hclsyntax.VisitAll(expr, func(n hclsyntax.Node) hcl.Diagnostics {
		if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
			functions[call.Name] = struct{}{}
		}
		return nil
	})
}
