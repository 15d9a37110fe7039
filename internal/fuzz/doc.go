// Package fuzztests houses Go fuzz harnesses for the parts of the formatter
// that run without the external parser: pre-processing, offset mapping and
// the embedded-language formatters. Their goal is to smoke test robustness
// and guard against panics or hangs on arbitrary inputs.
//
// Назначение: прогонять произвольные байты через snip и embedfmt.
//
// Не делает: запуск node, генерацию корпусов, запись файлов.
//
// Зависимости: internal/snip, internal/embedfmt, internal/doc, internal/format.

package fuzztests
