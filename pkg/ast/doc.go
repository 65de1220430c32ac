// Package ast defines the typed syntax tree the complexity pipeline works on.
//
// A Tree is produced from a tree-sitter parse by the treesitter subpackage and
// keeps only what matters for asymptotic reasoning: declarations, loops,
// branches, calls, assignments and early exits. Expressions are not kept as
// trees; each is reduced to an Expr summary (identifiers read, scaling
// operators applied, slicing) that the extractor consults when deciding how a
// loop bound or a recursive argument shrinks.
//
// Usage:
//
//	result, err := parser.New().Parse(ctx, src)
//	if err != nil {
//	    return err
//	}
//	tree, err := treesitter.Lower(result, treesitter.Limits{})
//	if err != nil {
//	    return err
//	}
//	ast.Walk(tree.Root, func(n *ast.Node) bool {
//	    fmt.Printf("%s at line %d\n", n.Kind, n.Pos.Line)
//	    return true
//	})
//
// A Tree is owned by a single analysis call and is discarded after extraction.
package ast
