package sms

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Render substitutes {placeholder} tokens in a template body. Unknown
// placeholders are left untouched so a badly filled context is visible in
// the delivered text rather than silently dropped.
func Render(text string, ctx map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		key := strings.Trim(m, "{}")
		if v, ok := ctx[key]; ok {
			return v
		}
		return m
	})
}
