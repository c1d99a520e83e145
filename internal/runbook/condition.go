package runbook

import "strings"

// falsyValues are the bound values that count as "not truthy" for the
// bare-name and negation forms of the condition language.
var falsyValues = map[string]bool{"": true, "false": true, "0": true}

// EvaluateCondition implements the four-form minimal expression
// language from spec.md §4.5:
//
//	!name             true iff name is unbound or bound to "", "false", "0"
//	name == 'lit'     string equality (single or double quoted literal)
//	name != 'lit'     string inequality
//	name              bare-name truthiness (non-empty, not "false"/"0")
//
// An unbound variable in any form evaluates as if bound to "" — a typo'd
// variable name skips its step rather than aborting the whole runbook.
func EvaluateCondition(expr string, env *Environment) bool {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "!") {
		name := strings.TrimSpace(strings.TrimPrefix(expr, "!"))
		return isFalsy(lookup(name, env))
	}

	if name, lit, ok := splitOperator(expr, "=="); ok {
		return lookup(name, env) == lit
	}

	if name, lit, ok := splitOperator(expr, "!="); ok {
		return lookup(name, env) != lit
	}

	return !isFalsy(lookup(expr, env))
}

func lookup(name string, env *Environment) string {
	v, _ := env.Get(strings.TrimSpace(name))
	return v
}

func isFalsy(v string) bool {
	return falsyValues[v]
}

// splitOperator splits "name OP 'literal'" around a binary operator,
// stripping matching single or double quotes from the literal.
func splitOperator(expr, op string) (name, literal string, ok bool) {
	idx := strings.Index(expr, op)
	if idx < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(expr[:idx])
	literal = strings.TrimSpace(expr[idx+len(op):])
	literal = unquote(literal)
	return name, literal, true
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
