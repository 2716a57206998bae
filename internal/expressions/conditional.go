package expressions

import (
	"regexp"
	"strings"

	"github.com/wabisabi926/script.skinshortcuts/internal/conditions"
)

var (
	thenPattern = regexp.MustCompile(`(?i)\bTHEN\b`)
	elifPattern = regexp.MustCompile(`(?i)\bELIF\b`)
	elsePattern = regexp.MustCompile(`(?i)\bELSE\b`)

	mathExprPattern = regexp.MustCompile(`\$MATH\[([^\]]+)\]`)
	ifExprPattern   = regexp.MustCompile(`\$IF\[([^\]]+)\]`)
)

type ifClause struct {
	condition string
	value     string
}

// EvaluateIf evaluates the expression inside an $IF[...] wrapper:
//
//	condition THEN value
//	condition THEN value ELSE fallback
//	cond1 THEN val1 ELIF cond2 THEN val2 ELSE fallback
//
// Branches are tried in order and the first whose condition matches supplies
// the value. With no matching branch and no ELSE the result is empty.
func EvaluateIf(expr string, properties map[string]string) string {
	var clauses []ifClause
	var elseValue string
	hasElse := false

	remaining := strings.TrimSpace(expr)
	for remaining != "" {
		remaining = strings.TrimSpace(remaining)

		thenLoc := thenPattern.FindStringIndex(remaining)
		if thenLoc == nil {
			// Trailing text with no THEN is an else value once we have at
			// least one clause.
			if len(clauses) > 0 && remaining != "" {
				elseValue = remaining
				hasElse = true
			}
			break
		}

		condition := strings.TrimSpace(remaining[:thenLoc[0]])
		afterThen := strings.TrimSpace(remaining[thenLoc[1]:])

		elifLoc := elifPattern.FindStringIndex(afterThen)
		elseLoc := elsePattern.FindStringIndex(afterThen)

		switch {
		case elifLoc != nil && (elseLoc == nil || elifLoc[0] < elseLoc[0]):
			clauses = append(clauses, ifClause{condition, strings.TrimSpace(afterThen[:elifLoc[0]])})
			remaining = afterThen[elifLoc[1]:]
		case elseLoc != nil:
			clauses = append(clauses, ifClause{condition, strings.TrimSpace(afterThen[:elseLoc[0]])})
			elseValue = strings.TrimSpace(afterThen[elseLoc[1]:])
			hasElse = true
			remaining = ""
		default:
			clauses = append(clauses, ifClause{condition, strings.TrimSpace(afterThen)})
			remaining = ""
		}
	}

	for _, clause := range clauses {
		if conditions.Evaluate(clause.condition, properties) {
			return clause.value
		}
	}

	if hasElse {
		return elseValue
	}
	return ""
}

// ProcessMath replaces every $MATH[...] expression in text with its result.
func ProcessMath(text string, properties map[string]string) string {
	return mathExprPattern.ReplaceAllStringFunc(text, func(match string) string {
		inner := match[len("$MATH[") : len(match)-1]
		return EvaluateMath(inner, properties)
	})
}

// ProcessIf replaces every $IF[...] expression in text with its result.
func ProcessIf(text string, properties map[string]string) string {
	return ifExprPattern.ReplaceAllStringFunc(text, func(match string) string {
		inner := match[len("$IF[") : len(match)-1]
		return EvaluateIf(inner, properties)
	})
}
