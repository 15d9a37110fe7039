// Package format prints a parsed component tree as canonical source text.
//
// Назначение: AST → doc.Doc → текст, по правилам для каждого вида узла.
// Не делает: разбор шаблона (это format.Parser) и форматирование
// встроенных языков (это format.EmbedFormatter).
// Зависимости: internal/ast, internal/doc, internal/snip, internal/attrs.
package format
