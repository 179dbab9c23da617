package query

import (
	"strings"
	"unicode"

	pkgerrors "github.com/angelmondragon/ecomagent-backend/pkg/errors"
)

var writeKeywords = map[string]struct{}{
	"insert": {}, "update": {}, "delete": {}, "merge": {},
	"drop": {}, "alter": {}, "create": {}, "truncate": {}, "rename": {},
	"attach": {}, "detach": {}, "pragma": {}, "vacuum": {}, "reindex": {},
	"grant": {}, "revoke": {}, "copy": {}, "call": {}, "do": {},
}

// CheckReadOnly accepts a single SELECT or WITH statement with no writes.
// Comments and one trailing semicolon are ignored.
func CheckReadOnly(statement string) error {
	masked := strings.TrimSpace(maskLiterals(statement))
	masked = strings.TrimSpace(strings.TrimRight(masked, "; \t\r\n"))
	if masked == "" {
		return pkgerrors.New(pkgerrors.CodeQueryRejected, "empty statement")
	}
	if strings.Contains(masked, ";") {
		return pkgerrors.New(pkgerrors.CodeQueryRejected, "multiple statements are not allowed")
	}

	words := strings.FieldsFunc(strings.ToLower(masked), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if len(words) == 0 || (words[0] != "select" && words[0] != "with") {
		return pkgerrors.New(pkgerrors.CodeQueryRejected, "only SELECT or WITH statements are allowed")
	}
	for i, w := range words {
		// REPLACE is also a string function; only REPLACE INTO writes.
		if w == "replace" && i+1 < len(words) && words[i+1] == "into" {
			return pkgerrors.New(pkgerrors.CodeQueryRejected, "statement contains write keyword REPLACE")
		}
		if _, bad := writeKeywords[w]; bad {
			return pkgerrors.New(pkgerrors.CodeQueryRejected, "statement contains write keyword "+strings.ToUpper(w))
		}
	}
	return nil
}

// maskLiterals drops comments and blanks out quoted strings and identifiers so
// keyword and semicolon checks only see SQL structure.
func maskLiterals(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))
	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			b.WriteRune(' ')
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i += 2
			for i < len(runes) && !(runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/') {
				i++
			}
			i++
			b.WriteRune(' ')
		case r == '\'' || r == '"' || r == '`':
			quote := r
			i++
			for i < len(runes) {
				if runes[i] == quote {
					if i+1 < len(runes) && runes[i+1] == quote {
						i += 2
						continue
					}
					break
				}
				i++
			}
			b.WriteString(" x ")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
