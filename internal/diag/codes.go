package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Ошибки внешнего парсера шаблонов
	SynInfo        Code = 2000
	SynParseFailed Code = 2001

	// Ошибки печати
	FmtInfo              Code = 3000
	FmtUnknownNode       Code = 3001
	FmtEmbedScript       Code = 3002
	FmtEmbedStyle        Code = 3003
	FmtEmbedExpression   Code = 3004
	FmtMissingContent    Code = 3005
	FmtParserUnavailable Code = 3006
	FmtNotIdempotent     Code = 3007

	// Ввод-вывод
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002
	IOCacheError     Code = 4003

	// Конфигурация
	CfgInvalid      Code = 5001
	CfgUnknownKey   Code = 5002
	CfgBadSortOrder Code = 5003
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown error",
	SynInfo:              "Template parser information",
	SynParseFailed:       "Template does not parse",
	FmtInfo:              "Formatter information",
	FmtUnknownNode:       "Unknown AST node",
	FmtEmbedScript:       "Script block cannot be formatted",
	FmtEmbedStyle:        "Style block cannot be formatted",
	FmtEmbedExpression:   "Template expression cannot be formatted",
	FmtMissingContent:    "Embedded content is missing or corrupt",
	FmtParserUnavailable: "Template parser is not available",
	FmtNotIdempotent:     "Formatting is not stable",
	IOLoadFileError:      "Cannot read file",
	IOWriteFileError:     "Cannot write file",
	IOCacheError:         "Format cache failure",
	CfgInvalid:           "Invalid configuration file",
	CfgUnknownKey:        "Unknown configuration key",
	CfgBadSortOrder:      "Invalid sort order",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("FMT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
