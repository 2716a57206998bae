// Package suffix rewrites property references inside template DSL text so a
// single template body can serve several parallel output slots (widget 1 vs
// widget 2). A suffix like ".2" is appended to property names in from= and
// condition= attributes; built-in names are exempt.
package suffix

import (
	"fmt"
	"regexp"
	"strings"
)

// Built-in names never rewritten in from= references.
var fromProtected = map[string]bool{
	"index":    true,
	"name":     true,
	"menu":     true,
	"id":       true,
	"idprefix": true,
	"default":  true,
}

// Built-in names never rewritten on the left side of condition operators.
var conditionProtected = map[string]bool{
	"index":    true,
	"name":     true,
	"menu":     true,
	"id":       true,
	"idprefix": true,
	"suffix":   true,
}

var (
	conditionSplitPattern = regexp.MustCompile(`([=~|+\[\]!])`)
	noSuffixPattern       = regexp.MustCompile(`\{NOSUFFIX:([^}]+)\}`)
)

// ApplyToFrom appends the suffix to a from= property reference. Protected
// built-in names pass through unchanged. A bracketed reference name[attr]
// suffixes only the name component: name.2[attr].
func ApplyToFrom(source, sfx string) string {
	if sfx == "" || source == "" {
		return source
	}

	if name, attr, ok := strings.Cut(source, "["); ok {
		if fromProtected[name] {
			return source
		}
		return name + sfx + "[" + attr
	}

	if fromProtected[source] {
		return source
	}
	return source + sfx
}

// ApplyToCondition appends the suffix to every property token on the left
// side of an = or ~ operator. Comparison values, protected built-ins and
// {NOSUFFIX:...} spans are untouched.
func ApplyToCondition(condition, sfx string) string {
	if sfx == "" || condition == "" {
		return condition
	}

	// Lift NOSUFFIX spans out before tokenizing so their contents are not
	// rewritten, then restore them.
	var preserved []string
	condition = noSuffixPattern.ReplaceAllStringFunc(condition, func(match string) string {
		inner := match[len("{NOSUFFIX:") : len(match)-1]
		preserved = append(preserved, inner)
		return fmt.Sprintf("__NOSUFFIX_%d__", len(preserved)-1)
	})

	parts := splitWithDelimiters(condition)
	var result strings.Builder
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i+1 < len(parts) {
			next := strings.TrimSpace(parts[i+1])
			if (next == "=" || next == "~") &&
				!conditionProtected[part] &&
				!strings.HasPrefix(part, "__NOSUFFIX_") {
				part += sfx
			}
		}
		result.WriteString(part)
	}

	transformed := result.String()
	for i, content := range preserved {
		transformed = strings.Replace(transformed, fmt.Sprintf("__NOSUFFIX_%d__", i), content, 1)
	}

	return transformed
}

// StripNoSuffixMarkers removes {NOSUFFIX:...} wrappers, keeping the content.
func StripNoSuffixMarkers(condition string) string {
	return noSuffixPattern.ReplaceAllString(condition, "$1")
}

// splitWithDelimiters splits on condition operators, keeping the operators
// as their own elements (the re.split capturing-group behavior).
func splitWithDelimiters(text string) []string {
	var parts []string
	last := 0
	for _, loc := range conditionSplitPattern.FindAllStringIndex(text, -1) {
		parts = append(parts, text[last:loc[0]], text[loc[0]:loc[1]])
		last = loc[1]
	}
	parts = append(parts, text[last:])
	return parts
}
