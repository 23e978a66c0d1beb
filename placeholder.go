package xlsxtemplate

import "strings"

// Синтаксис плейсхолдеров:
// - ${path}        — скаляр или массив (массив раскрывается по колонкам);
// - ${table:path}  — массив, раскрываемый по строкам.
// ${} без пути считается обычным текстом.

const (
	openDelim   = "${"
	closeDelim  = '}'
	tablePrefix = "table:"
)

type cellTokenKind int

const (
	tokenText cellTokenKind = iota
	tokenPlaceholder
)

type cellToken struct {
	kind     cellTokenKind
	text     string // исходный текст токена
	accessor string
	table    bool
}

// parseCellTokens разбивает текст на литералы и плейсхолдеры.
// Незакрытый "${" остаётся текстом.
func parseCellTokens(s string) []cellToken {
	var toks []cellToken
	last, i := 0, 0
	for i < len(s) {
		start := strings.Index(s[i:], openDelim)
		if start < 0 {
			break
		}
		start += i
		end := strings.IndexByte(s[start+len(openDelim):], closeDelim)
		if end < 0 {
			break
		}
		end += start + len(openDelim)
		inner := s[start+len(openDelim) : end]
		i = end + 1
		if inner == "" {
			continue
		}
		if start > last {
			toks = append(toks, cellToken{kind: tokenText, text: s[last:start]})
		}
		tok := cellToken{kind: tokenPlaceholder, text: s[start:i], accessor: inner}
		if rest := strings.TrimPrefix(inner, tablePrefix); rest != inner && rest != "" {
			tok.table = true
			tok.accessor = rest
		}
		toks = append(toks, tok)
		last = i
	}
	if last < len(s) {
		toks = append(toks, cellToken{kind: tokenText, text: s[last:]})
	}
	return toks
}

// soleToken сообщает, состоит ли текст ровно из одного плейсхолдера.
func soleToken(s string) (cellToken, bool) {
	toks := parseCellTokens(s)
	if len(toks) != 1 || toks[0].kind != tokenPlaceholder {
		return cellToken{}, false
	}
	return toks[0], true
}

// hasPlaceholders проверяет, есть ли в тексте хотя бы один плейсхолдер.
func hasPlaceholders(s string) bool {
	for _, tk := range parseCellTokens(s) {
		if tk.kind == tokenPlaceholder {
			return true
		}
	}
	return false
}

// replacePlaceholders подставляет render(token) вместо каждого плейсхолдера.
func replacePlaceholders(s string, render func(cellToken) string) string {
	if !strings.Contains(s, openDelim) {
		return s
	}
	var sb strings.Builder
	for _, tk := range parseCellTokens(s) {
		if tk.kind == tokenText {
			sb.WriteString(tk.text)
			continue
		}
		sb.WriteString(render(tk))
	}
	return sb.String()
}
