package service

import "regexp"

// TokenMap maps placeholder names to their rendered values.
type TokenMap map[string]string

var placeholder = regexp.MustCompile(`%([A-Za-z0-9_]+)%`)

// Render replaces every %name% with its value. Names missing from tokens stay
// in the output as written, so an incomplete template is visible.
func Render(tpl string, tokens TokenMap) string {
	if tpl == "" {
		return ""
	}
	return placeholder.ReplaceAllStringFunc(tpl, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := tokens[name]; ok {
			return v
		}
		return m
	})
}
