// Package naming provides machine-name hooks for the exporter. Without one
// the exporter keeps stored machine names unchanged.
package naming

import (
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sanitizer rewrites machine names into ASCII lower camel case.
// Diacritics are folded ("Café" becomes "cafe") and characters outside
// letters and digits act as word breaks or are dropped. A name that
// sanitizes to nothing is returned unchanged.
//
// Sanitizer is stateless: two distinct names may sanitize to the same
// result, in which case the later entity overwrites the earlier one.
type Sanitizer struct{}

func (Sanitizer) HookName() string { return "sanitize" }

func (Sanitizer) AlterMachineName(name string) string {
	folded := Fold(name)
	if folded == "" {
		return name
	}
	if out := strcase.ToLowerCamel(folded); out != "" {
		return out
	}
	return name
}

// Fold decomposes s, strips combining marks and trims surrounding space.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(out)
}
