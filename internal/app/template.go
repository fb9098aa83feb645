package app

import (
	"strings"
)

// expandArgs substitutes {name} placeholders in each argument.
// Unknown placeholders are left as they are.
func expandArgs(tmpl []string, vars map[string]string) []string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)
	out := make([]string, len(tmpl))
	for i, a := range tmpl {
		out[i] = r.Replace(a)
	}
	return out
}
