package generator

import (
	"strings"
	"unicode"
)

// Snake converts a source identifier to the generated-file spelling: a
// separator before every upper-case letter, everything lower-cased, no
// leading separator. There is no acronym collapsing, so UI becomes u_i and
// PLayers becomes p_layers. File names derived from this transform are an
// external contract for consumers; the transform is frozen.
func Snake(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
