package format

import (
	"sveltefmt/internal/ast"
	"sveltefmt/internal/doc"
)

func (p *printer) printIf(n *ast.IfBlock) doc.Doc {
	parts := []doc.Doc{
		doc.Text("{#if "), p.printExpr(n.Expression), doc.Text("}"),
		doc.Indent(p.printChildren(n.Children, n, true)),
	}
	if n.Else != nil {
		parts = append(parts, p.print(n.Else, n))
	}
	parts = append(parts, doc.Text("{/if}"))
	return doc.Concat(doc.Group(doc.Concat(parts...)), doc.BreakParent)
}

// printElse collapses {:else}{#if} into {:else if} unless the else belongs
// to an each block.
func (p *printer) printElse(n *ast.ElseBlock, parent ast.Node) doc.Doc {
	_, inEach := parent.(*ast.EachBlock)
	if len(n.Children) == 1 && !inEach {
		if inner, ok := n.Children[0].(*ast.IfBlock); ok {
			parts := []doc.Doc{
				doc.Text("{:else if "), p.printExpr(inner.Expression), doc.Text("}"),
				doc.Indent(p.printChildren(inner.Children, inner, true)),
			}
			if inner.Else != nil {
				parts = append(parts, p.print(inner.Else, inner))
			}
			return doc.Group(doc.Concat(parts...))
		}
	}
	return doc.Group(doc.Concat(doc.Text("{:else}"), doc.Indent(p.printChildren(n.Children, n, true))))
}

func (p *printer) printEach(n *ast.EachBlock) doc.Doc {
	parts := []doc.Doc{
		doc.Text("{#each "), p.printExpr(n.Expression),
		doc.Text(" as "), p.printExpr(n.Context),
	}
	if n.Index != "" {
		parts = append(parts, doc.Text(", "+n.Index))
	}
	if n.Key != nil {
		parts = append(parts, doc.Text(" ("), p.printExpr(n.Key), doc.Text(")"))
	}
	parts = append(parts, doc.Text("}"), doc.Indent(p.printChildren(n.Children, n, true)))
	if n.Else != nil {
		parts = append(parts, p.print(n.Else, n))
	}
	parts = append(parts, doc.Text("{/each}"))
	return doc.Concat(doc.Group(doc.Concat(parts...)), doc.BreakParent)
}

// printAwait picks one of four shapes so that empty pending and catch
// branches are not printed.
func (p *printer) printAwait(n *ast.AwaitBlock) doc.Doc {
	hasPending := n.Pending != nil && !isEmptyChildren(n.Pending.Children)
	hasCatch := n.Catch != nil && !isEmptyChildren(n.Catch.Children)

	expr := p.printExpr(n.Expression)
	binding := func(keyword string, e *ast.Expression) doc.Doc {
		if e == nil {
			return doc.Text(keyword)
		}
		return doc.Concat(doc.Text(keyword+" "), p.printExpr(e))
	}
	branch := func(b ast.Node) doc.Doc {
		if b == nil {
			return doc.Empty
		}
		return doc.Indent(p.print(b, n))
	}
	// typed nil pointers must not reach print as non-nil interfaces
	var pending, then, catch ast.Node
	if n.Pending != nil {
		pending = n.Pending
	}
	if n.Then != nil {
		then = n.Then
	}
	if n.Catch != nil {
		catch = n.Catch
	}

	var parts []doc.Doc
	if hasPending {
		parts = append(parts,
			doc.Group(doc.Concat(doc.Text("{#await "), expr, doc.Text("}"))),
			branch(pending),
			doc.Group(doc.Concat(binding("{:then", n.Value), doc.Text("}"))),
			branch(then),
		)
	} else {
		parts = append(parts,
			doc.Group(doc.Concat(doc.Text("{#await "), expr, binding(" then", n.Value), doc.Text("}"))),
			branch(then),
		)
	}
	if hasCatch {
		parts = append(parts,
			doc.Group(doc.Concat(binding("{:catch", n.Error), doc.Text("}"))),
			branch(catch),
		)
	}
	parts = append(parts, doc.Text("{/await}"))
	return doc.Concat(doc.Group(doc.Concat(parts...)), doc.BreakParent)
}
