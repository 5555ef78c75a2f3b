// Package manifest reads the identifier that ties a form export to the
// project folder it belongs to.
package manifest

import (
	"strings"

	"github.com/tidwall/gjson"
)

// FileName is the manifest's fixed name, both inside an archive and inside a
// project folder.
const FileName = "form.json"

// CodeField is the manifest field holding the identifier.
const CodeField = "Code"

// Lookup returns the trimmed Code of a manifest document. ok is false when
// the document is not a JSON object, the field is missing or not a string,
// or the trimmed value is empty.
func Lookup(text string) (code string, ok bool) {
	text = strings.TrimPrefix(text, "\ufeff")
	if !gjson.Valid(text) {
		return "", false
	}
	doc := gjson.Parse(text)
	if !doc.IsObject() {
		return "", false
	}
	field := doc.Get(CodeField)
	if field.Type != gjson.String {
		return "", false
	}
	code = strings.TrimSpace(field.Str)
	return code, code != ""
}

// ExtractCode is Lookup without the flag: any failure yields "".
func ExtractCode(text string) string {
	code, _ := Lookup(text)
	return code
}

// Matches reports whether two identifiers are equal after trimming.
// Comparison is case-sensitive and an empty identifier never matches.
func Matches(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return a == b
}
