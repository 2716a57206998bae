// Package conditions evaluates the property condition language used across
// menu, template and property definitions.
//
// Operators (symbol and keyword forms are synonyms):
//
//	propertyName              truthy (non-empty, and not the string "false")
//	propertyName=value        equality (EQUALS)
//	propertyName~value        substring (CONTAINS)
//	propertyName EMPTY        empty check
//	propertyName IN a,b,c     list membership
//	cond + cond               AND
//	cond | cond               OR
//	!cond                     NOT
//	[cond | cond]             grouping
//	propertyName=a | b | c    compact OR
//
// Negation applies to the adjacent atom only: !a + b means (!a) AND b. To
// negate a whole group, bracket it: ![a | b]. Malformed input evaluates to
// false rather than failing the build.
package conditions

import (
	"regexp"
	"strings"
)

var (
	orSplitPattern        = regexp.MustCompile(`\s*\|\s*`)
	conditionMatchPattern = regexp.MustCompile(`^(!?)([a-zA-Z_][a-zA-Z0-9_.]*)(=|~)(.*)$`)
)

// Keyword operators normalized to their symbol forms before parsing. Word
// boundaries keep values containing these words intact.
var keywordReplacements = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\bAND\b`), "+"},
	{regexp.MustCompile(`\bOR\b`), "|"},
	{regexp.MustCompile(`\bNOT\b`), "!"},
	{regexp.MustCompile(`\bEQUALS\b`), "="},
	{regexp.MustCompile(`\bCONTAINS\b`), "~"},
}

// Evaluate reports whether the condition matches the property snapshot.
// The empty condition matches everything.
func Evaluate(condition string, properties map[string]string) bool {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return true
	}

	condition = normalizeKeywords(condition)

	if strings.Contains(condition, "|") {
		condition = ExpandCompactOr(condition)
	}
	return evaluateExpanded(condition, properties)
}

func normalizeKeywords(condition string) string {
	for _, kw := range keywordReplacements {
		condition = kw.pattern.ReplaceAllString(condition, kw.replacement)
	}
	return condition
}

// ExpandCompactOr rewrites compact OR syntax to its full form:
// "widgetType=movies | episodes" becomes
// "widgetType=movies | widgetType=episodes". The property name and operator
// cascade from the most recent full condition in the segment.
func ExpandCompactOr(condition string) string {
	if condition == "" {
		return condition
	}

	var resultParts []string
	for _, andPart := range splitPreservingBrackets(condition, '+') {
		andPart = strings.TrimSpace(andPart)
		if andPart == "" {
			continue
		}

		negated := strings.HasPrefix(andPart, "!")
		if negated {
			andPart = strings.TrimSpace(andPart[1:])
		}

		if strings.HasPrefix(andPart, "[") && strings.HasSuffix(andPart, "]") {
			inner := strings.TrimSpace(andPart[1 : len(andPart)-1])
			expanded := expandOrSegment(inner)
			if negated {
				resultParts = append(resultParts, "!["+expanded+"]")
			} else {
				resultParts = append(resultParts, "["+expanded+"]")
			}
		} else {
			expanded := expandOrSegment(andPart)
			if negated {
				resultParts = append(resultParts, "!"+expanded)
			} else {
				resultParts = append(resultParts, expanded)
			}
		}
	}

	return strings.Join(resultParts, " + ")
}

func splitPreservingBrackets(text string, delimiter byte) []string {
	var parts []string
	var current strings.Builder
	depth := 0

	for i := 0; i < len(text); i++ {
		switch {
		case text[i] == '[':
			depth++
			current.WriteByte(text[i])
		case text[i] == ']':
			depth--
			current.WriteByte(text[i])
		case text[i] == delimiter && depth == 0:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteByte(text[i])
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

func expandOrSegment(segment string) string {
	parts := orSplitPattern.Split(segment, -1)
	if len(parts) <= 1 {
		return segment
	}

	var resultParts []string
	var currentProperty, currentOperator string

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if m := conditionMatchPattern.FindStringSubmatch(part); m != nil {
			currentProperty = m[2]
			currentOperator = m[3]
			resultParts = append(resultParts, m[1]+m[2]+m[3]+m[4])
		} else if currentProperty != "" {
			resultParts = append(resultParts, currentProperty+currentOperator+part)
		} else {
			resultParts = append(resultParts, part)
		}
	}

	return strings.Join(resultParts, " | ")
}

// isWrappedInBrackets reports whether text is one bracketed group, not merely
// starting and ending with brackets ("[a]+[b]" is not wrapped).
func isWrappedInBrackets(text string) bool {
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
		return false
	}
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 && i < len(text)-1 {
				return false
			}
		}
	}
	return depth == 0
}

func evaluateExpanded(condition string, properties map[string]string) bool {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return true
	}

	if isWrappedInBrackets(condition) {
		return evaluateExpanded(condition[1:len(condition)-1], properties)
	}

	// AND/OR split before negation: !a + b is (!a) + b, not !(a + b).
	andParts := splitPreservingBrackets(condition, '+')
	if len(andParts) > 1 {
		for _, part := range andParts {
			if !evaluateExpanded(part, properties) {
				return false
			}
		}
		return true
	}

	orParts := splitPreservingBrackets(condition, '|')
	if len(orParts) > 1 {
		for _, part := range orParts {
			if evaluateExpanded(part, properties) {
				return true
			}
		}
		return false
	}

	if strings.HasPrefix(condition, "!") {
		inner := strings.TrimSpace(condition[1:])
		if isWrappedInBrackets(inner) {
			return !evaluateExpanded(inner[1:len(inner)-1], properties)
		}
		return !evaluateSingle(inner, properties)
	}

	return evaluateSingle(condition, properties)
}

func evaluateSingle(condition string, properties map[string]string) bool {
	condition = strings.TrimSpace(condition)

	negated := false
	if strings.HasPrefix(condition, "!") {
		negated = true
		condition = strings.TrimSpace(condition[1:])
	}

	result := evaluateAtom(condition, properties)
	if negated {
		return !result
	}
	return result
}

func evaluateAtom(condition string, properties map[string]string) bool {
	if isWrappedInBrackets(condition) {
		return evaluateExpanded(condition[1:len(condition)-1], properties)
	}

	if name, ok := strings.CutSuffix(condition, " EMPTY"); ok {
		return properties[strings.TrimSpace(name)] == ""
	}

	if name, values, ok := strings.Cut(condition, " IN "); ok {
		actual := properties[strings.TrimSpace(name)]
		for _, v := range strings.Split(values, ",") {
			if actual == strings.TrimSpace(v) {
				return true
			}
		}
		return false
	}

	if name, value, ok := strings.Cut(condition, "="); ok {
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		actual, exists := properties[name]
		if !exists {
			// Literal boolean on the left (after $PROPERTY substitution).
			if lower := strings.ToLower(name); lower == "true" || lower == "false" {
				actual = name
			}
		}
		return actual == value
	}

	if name, value, ok := strings.Cut(condition, "~"); ok {
		actual := properties[strings.TrimSpace(name)]
		return strings.Contains(actual, strings.TrimSpace(value))
	}

	if lower := strings.ToLower(condition); lower == "true" || lower == "false" {
		return lower == "true"
	}

	// Bare property name: truthy when non-empty, with "false"/"true" strings
	// evaluated as booleans.
	val := properties[condition]
	switch strings.ToLower(val) {
	case "true":
		return true
	case "false":
		return false
	}
	return val != ""
}
