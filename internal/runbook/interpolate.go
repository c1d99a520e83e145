package runbook

import "regexp"

var templateRef = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Interpolate substitutes every `{{ name }}` reference in s with its
// current binding in env. An unbound name is left as the literal
// `{{ name }}`, per spec.md §4.5, so shell-level environment expansion
// can take over for names the runbook itself doesn't know about.
func Interpolate(s string, env *Environment) string {
	return templateRef.ReplaceAllStringFunc(s, func(match string) string {
		name := templateRef.FindStringSubmatch(match)[1]
		if v, ok := env.Get(name); ok {
			return v
		}
		return match
	})
}

// extractTemplateNames returns every distinct `{{ name }}` reference in s.
func extractTemplateNames(s string) []string {
	matches := templateRef.FindAllStringSubmatch(s, -1)
	var names []string
	seen := make(map[string]bool)
	for _, m := range matches {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// InterpolateEnv applies Interpolate to every value in an env-overlay map.
func InterpolateEnv(overlay map[string]string, env *Environment) map[string]string {
	if overlay == nil {
		return nil
	}
	out := make(map[string]string, len(overlay))
	for k, v := range overlay {
		out[k] = Interpolate(v, env)
	}
	return out
}
