// Package sanitize repairs the one defect generated scripts reliably have:
// unquoted column names in df[...] subscripts. Repair is purely syntactic;
// anything the rewrite cannot fix still fails safely in the executor.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// catchAll rewrites any remaining bare df[name] subscript. The leading
// character class keeps already-quoted subscripts untouched.
var catchAll = regexp.MustCompile(`df\[\s*([^\s'"\]][^\]]*?)\s*\]`)

// Sanitize normalizes df subscripts in generated code. Known column names
// are rewritten first, exactly, then a catch-all pass quotes whatever bare
// identifiers remain. The function is idempotent.
func Sanitize(code string, columns []string) string {
	if !strings.Contains(code, "df[") {
		return code
	}

	for _, col := range columns {
		// df[ revenue ] -> df["revenue"], whatever the spacing.
		pattern := regexp.MustCompile(`df\[\s*` + regexp.QuoteMeta(col) + `\s*\]`)
		code = pattern.ReplaceAllString(code, fmt.Sprintf(`df[%q]`, col))
	}

	return catchAll.ReplaceAllString(code, `df["$1"]`)
}
