package export

import (
	"fmt"
	"strings"
)

// MaxSheetNameLen is the hard spreadsheet limit on sheet identifiers.
const MaxSheetNameLen = 31

var sheetNameSanitizer = strings.NewReplacer(
	"[", "-",
	"]", "-",
	":", "-",
	"*", "-",
	"?", "-",
	"/", "-",
	"\\", "-",
)

// AllocateSheetName turns a proposed name into a unique, spreadsheet-legal
// identifier. Illegal characters become "-", the result is capped at 31
// characters, and collisions with used are resolved by a "_<n>" suffix with
// the base re-truncated so the suffixed name still fits. The returned name is
// added to used before returning, so loop callers never re-check.
//
// Pure function of (name, used): same inputs in the same order produce the
// same output every run.
func AllocateSheetName(name string, used map[string]struct{}) string {
	name = sheetNameSanitizer.Replace(name)
	if name == "" {
		name = "Sheet"
	}
	// The 31-character cap counts characters, not bytes; truncating on rune
	// boundaries keeps multibyte names valid UTF-8.
	runes := []rune(name)
	if len(runes) > MaxSheetNameLen {
		runes = runes[:MaxSheetNameLen]
		name = string(runes)
	}

	base := runes
	for i := 1; ; i++ {
		if _, taken := used[name]; !taken {
			used[name] = struct{}{}
			return name
		}
		suffix := fmt.Sprintf("_%d", i)
		keep := MaxSheetNameLen - len(suffix)
		if keep > len(base) {
			keep = len(base)
		}
		name = string(base[:keep]) + suffix
	}
}
