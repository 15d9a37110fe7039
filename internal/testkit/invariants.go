// Package testkit holds checks shared by tests of several packages.
package testkit

import (
	"fmt"

	"sveltefmt/internal/ast"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed tree:
// 1) every span lies within [0, textLen] and is not reversed
// 2) every child span lies within its parent's span
// 3) top-level sections do not overlap
// Nodes with a zero span are synthetic and skipped.
func CheckSpanInvariants(root *ast.Root, textLen int) error {
	if root == nil {
		return fmt.Errorf("nil root")
	}
	var sections []ast.Node
	if root.HTML != nil {
		if err := checkNode(root.HTML, 0, textLen); err != nil {
			return err
		}
	}
	for _, n := range []ast.Node{root.Module, root.Instance, root.CSS} {
		if isNil(n) {
			continue
		}
		if err := checkNode(n, 0, textLen); err != nil {
			return err
		}
		sections = append(sections, n)
	}
	for i, a := range sections {
		as, ae := a.Span()
		for _, b := range sections[i+1:] {
			bs, be := b.Span()
			if as < be && bs < ae {
				return fmt.Errorf("%s [%d,%d) overlaps %s [%d,%d)", a.Kind(), as, ae, b.Kind(), bs, be)
			}
		}
	}
	return nil
}

func checkNode(n ast.Node, lo, hi int) error {
	start, end := n.Span()
	if start == 0 && end == 0 {
		return nil
	}
	if end < start {
		return fmt.Errorf("%s has reversed span [%d,%d)", n.Kind(), start, end)
	}
	if start < lo || end > hi {
		return fmt.Errorf("%s [%d,%d) is outside [%d,%d)", n.Kind(), start, end, lo, hi)
	}
	for _, c := range children(n) {
		if err := checkNode(c, start, end); err != nil {
			return err
		}
	}
	return nil
}

// children returns the direct children ast.Inspect would visit.
func children(n ast.Node) []ast.Node {
	var out []ast.Node
	ast.Inspect(n, func(c ast.Node) bool {
		if c == n {
			return true
		}
		out = append(out, c)
		return false
	})
	return out
}

// isNil catches typed nil pointers stored in the interface.
func isNil(n ast.Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *ast.Script:
		return n == nil
	case *ast.Style:
		return n == nil
	}
	return false
}
