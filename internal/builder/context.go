package builder

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wabisabi926/script.skinshortcuts/internal/conditions"
	"github.com/wabisabi926/script.skinshortcuts/internal/models"
	"github.com/wabisabi926/script.skinshortcuts/internal/suffix"
)

var (
	propertyPattern = regexp.MustCompile(`\$PROPERTY\[([^\]]+)\]`)
	parentPattern   = regexp.MustCompile(`\$PARENT\[([^\]]+)\]`)
	expPattern      = regexp.MustCompile(`\$EXP\[([^\]]+)\]`)
)

// buildContext assembles the property snapshot for one entity and one
// output slot. Layering order, later layers overriding earlier:
// collection defaults, item properties, built-ins, schema fallbacks,
// template properties, vars, presets, preset groups, property groups.
func (b *TemplateBuilder) buildContext(tmpl *models.Template, output models.TemplateOutput, item *models.MenuItem, idx int, menu *models.Menu) map[string]string {
	ctx := make(map[string]string)
	if menu != nil {
		for name, value := range menu.Defaults.Properties {
			ctx[name] = value
		}
	}
	for name, value := range item.Properties {
		ctx[name] = value
	}

	ctx["index"] = strconv.Itoa(idx)
	ctx["name"] = item.Name
	if menu != nil {
		ctx["menu"] = menu.Name
	} else {
		ctx["menu"] = ""
	}
	ctx["idprefix"] = output.IDPrefix
	ctx["id"] = entityID(output.IDPrefix, idx)
	ctx["suffix"] = output.Suffix

	b.applyFallbacks(item, ctx)

	// First matching declaration wins per property name.
	resolved := make(map[string]bool)
	for i := range tmpl.Properties {
		prop := &tmpl.Properties[i]
		if resolved[prop.Name] {
			continue
		}
		if value, ok := b.resolveProperty(prop, item, ctx, output.Suffix); ok {
			ctx[prop.Name] = value
			resolved[prop.Name] = true
		}
	}

	for i := range tmpl.Vars {
		if value, ok := b.resolveVar(&tmpl.Vars[i], item, ctx, output.Suffix); ok {
			ctx[tmpl.Vars[i].Name] = value
		}
	}

	for _, ref := range tmpl.PresetRefs {
		effectiveSuffix := combineSuffixes(output.Suffix, ref.Suffix)
		if !b.checkRefCondition(ref.Condition, effectiveSuffix, item, ctx) {
			continue
		}
		b.applyPreset(ref, item, ctx, effectiveSuffix)
	}

	for _, ref := range tmpl.PresetGroupRefs {
		effectiveSuffix := combineSuffixes(output.Suffix, ref.Suffix)
		if !b.checkRefCondition(ref.Condition, effectiveSuffix, item, ctx) {
			continue
		}
		b.applyPresetGroup(ref, item, ctx, effectiveSuffix)
	}

	for _, ref := range tmpl.PropertyGroups {
		effectiveSuffix := combineSuffixes(output.Suffix, ref.Suffix)
		if !b.checkRefCondition(ref.Condition, effectiveSuffix, item, ctx) {
			continue
		}
		group := b.schema.PropertyGroup(ref.Name)
		if group == nil {
			b.log.Warn().Str("propertyGroup", ref.Name).Msg("undefined property group reference")
			continue
		}
		b.applyPropertyGroup(group, item, ctx, effectiveSuffix, map[string]bool{group.Name: true})
	}

	return ctx
}

// checkRefCondition gates a bundle reference: the condition gets expression
// expansion and suffix rewriting before evaluation.
func (b *TemplateBuilder) checkRefCondition(condition, sfx string, item *models.MenuItem, ctx map[string]string) bool {
	if condition == "" {
		return true
	}
	condition = b.expandExpressions(condition)
	if sfx != "" {
		condition = suffix.ApplyToCondition(condition, sfx)
	}
	return b.evalCondition(condition, item, ctx)
}

// resolveProperty resolves one property declaration against the snapshot so
// far. Returns false when a gating condition fails.
func (b *TemplateBuilder) resolveProperty(prop *models.TemplateProperty, item *models.MenuItem, ctx map[string]string, sfx string) (string, bool) {
	if prop.Condition != "" {
		condition := b.expandExpressions(prop.Condition)
		if sfx != "" {
			condition = suffix.ApplyToCondition(condition, sfx)
		}
		if !b.evalCondition(condition, item, ctx) {
			return "", false
		}
	}

	if prop.From != "" {
		source := prop.From
		if sfx != "" {
			source = suffix.ApplyToFrom(source, sfx)
		}
		return b.fromSource(source, item, ctx), true
	}

	value := prop.Value
	if strings.Contains(value, "$PROPERTY[") {
		value = b.substitutePropertyRefs(value, item, ctx)
	}
	return value, true
}

// resolveVar resolves a var: first matching (or unconditional) value wins.
func (b *TemplateBuilder) resolveVar(v *models.TemplateVar, item *models.MenuItem, ctx map[string]string, sfx string) (string, bool) {
	for _, val := range v.Values {
		if val.Condition == "" {
			return val.Value, true
		}
		condition := b.expandExpressions(val.Condition)
		if sfx != "" {
			condition = suffix.ApplyToCondition(condition, sfx)
		}
		if b.evalCondition(condition, item, ctx) {
			return val.Value, true
		}
	}
	return "", false
}

// fromSource reads a from= reference: built-ins first, then the snapshot,
// then the item's own properties.
func (b *TemplateBuilder) fromSource(source string, item *models.MenuItem, ctx map[string]string) string {
	switch source {
	case "index", "name", "menu", "id", "idprefix":
		return ctx[source]
	}
	if value, ok := ctx[source]; ok {
		return value
	}
	return item.Property(source)
}

// substitutePropertyRefs replaces $PROPERTY[...] during context building.
func (b *TemplateBuilder) substitutePropertyRefs(text string, item *models.MenuItem, ctx map[string]string) string {
	return propertyPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[len("$PROPERTY[") : len(match)-1]
		if value, ok := ctx[name]; ok {
			return value
		}
		return item.Property(name)
	})
}

// applyPropertyGroup expands a property group into the snapshot. Group
// properties never override values already present. Nested group references
// recurse with the in-progress set guarding against cycles.
func (b *TemplateBuilder) applyPropertyGroup(group *models.PropertyGroup, item *models.MenuItem, ctx map[string]string, sfx string, inProgress map[string]bool) {
	for i := range group.Properties {
		prop := group.Properties[i]
		if sfx != "" {
			if prop.From != "" {
				prop.From = suffix.ApplyToFrom(prop.From, sfx)
			}
			if prop.Condition != "" {
				prop.Condition = suffix.ApplyToCondition(b.expandExpressions(prop.Condition), sfx)
			}
		}
		if value, ok := b.resolveProperty(&prop, item, ctx, ""); ok {
			if _, exists := ctx[prop.Name]; !exists {
				ctx[prop.Name] = value
			}
		}
	}

	for i := range group.Vars {
		if value, ok := b.resolveVar(&group.Vars[i], item, ctx, sfx); ok {
			ctx[group.Vars[i].Name] = value
		}
	}

	for _, ref := range group.GroupRefs {
		if inProgress[ref.Name] {
			b.log.Warn().Str("propertyGroup", ref.Name).Msg("property group reference cycle")
			continue
		}
		nested := b.schema.PropertyGroup(ref.Name)
		if nested == nil {
			b.log.Warn().Str("propertyGroup", ref.Name).Msg("undefined property group reference")
			continue
		}
		effectiveSuffix := combineSuffixes(sfx, ref.Suffix)
		if !b.checkRefCondition(ref.Condition, effectiveSuffix, item, ctx) {
			continue
		}
		inProgress[ref.Name] = true
		b.applyPropertyGroup(nested, item, ctx, effectiveSuffix, inProgress)
		delete(inProgress, ref.Name)
	}
}

// applyPreset applies the first matching preset row's values as properties.
// The suffix rewrites row conditions, so one preset serves every slot; it is
// never applied to the preset name itself.
func (b *TemplateBuilder) applyPreset(ref models.GroupReference, item *models.MenuItem, ctx map[string]string, sfx string) {
	preset := b.schema.Preset(ref.Name)
	if preset == nil {
		b.log.Warn().Str("preset", ref.Name).Msg("undefined preset reference")
		return
	}

	values := b.presetValues(preset, item, ctx, sfx)
	if values == nil {
		return
	}
	for name, value := range values {
		if _, exists := ctx[name]; !exists {
			ctx[name] = value
		}
	}
}

// applyPresetGroup evaluates a preset group's children in document order;
// the first matching child (a preset reference or inline values) wins.
func (b *TemplateBuilder) applyPresetGroup(ref models.GroupReference, item *models.MenuItem, ctx map[string]string, sfx string) {
	group := b.schema.PresetGroup(ref.Name)
	if group == nil {
		b.log.Warn().Str("presetGroup", ref.Name).Msg("undefined preset group reference")
		return
	}

	for _, child := range group.Children {
		if child.Condition != "" {
			condition := b.expandExpressions(child.Condition)
			if sfx != "" {
				condition = suffix.ApplyToCondition(condition, sfx)
			}
			if !b.evalCondition(condition, item, ctx) {
				continue
			}
		}

		if child.PresetName != "" {
			preset := b.schema.Preset(child.PresetName)
			if preset == nil {
				continue
			}
			values := b.presetValues(preset, item, ctx, sfx)
			if values == nil {
				continue
			}
			for name, value := range values {
				if _, exists := ctx[name]; !exists {
					ctx[name] = value
				}
			}
			return
		}

		if len(child.Values) > 0 {
			for name, value := range child.Values {
				if _, exists := ctx[name]; !exists {
					ctx[name] = value
				}
			}
			return
		}
	}
}

// presetValues returns the first matching row's values, or nil.
func (b *TemplateBuilder) presetValues(preset *models.Preset, item *models.MenuItem, ctx map[string]string, sfx string) map[string]string {
	for _, row := range preset.Rows {
		if row.Condition == "" {
			return row.Values
		}
		condition := b.expandExpressions(row.Condition)
		if sfx != "" {
			condition = suffix.ApplyToCondition(condition, sfx)
		}
		if b.evalCondition(condition, item, ctx) {
			return row.Values
		}
	}
	return nil
}

// applyFallbacks fills schema fallback values for properties the item left
// unset, including suffixed variants for every suffix the item uses.
func (b *TemplateBuilder) applyFallbacks(item *models.MenuItem, ctx map[string]string) {
	if b.propertySchema == nil {
		return
	}

	suffixesInUse := map[string]bool{"": true}
	for name := range item.Properties {
		if i := strings.LastIndex(name, "."); i >= 0 {
			if tail := name[i+1:]; tail != "" && isDigits(tail) {
				suffixesInUse["."+tail] = true
			}
		}
	}

	for _, fb := range b.propertySchema.Ordered() {
		for sfx := range suffixesInUse {
			suffixedProp := fb.Property + sfx

			if _, ok := ctx[suffixedProp]; ok {
				continue
			}
			if item.Property(suffixedProp) != "" {
				continue
			}

			for _, rule := range fb.Rules {
				if rule.Condition == "" {
					ctx[suffixedProp] = rule.Value
					break
				}
				condition := rule.Condition
				if sfx != "" {
					condition = suffix.ApplyToCondition(condition, sfx)
				}
				if b.evalCondition(condition, item, ctx) {
					ctx[suffixedProp] = rule.Value
					break
				}
			}
		}
	}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// checkConditions verifies a template's AND-ed top-level conditions.
func (b *TemplateBuilder) checkConditions(conds []string, item *models.MenuItem, sfx string) bool {
	for _, cond := range conds {
		expanded := b.expandExpressions(cond)
		if sfx != "" {
			expanded = suffix.ApplyToCondition(expanded, sfx)
		}
		if !b.evalCondition(expanded, item, nil) {
			return false
		}
	}
	return true
}

// evalCondition evaluates a condition against the item's properties merged
// with the snapshot built so far. Expression references are expanded and
// no-suffix markers stripped first.
func (b *TemplateBuilder) evalCondition(condition string, item *models.MenuItem, ctx map[string]string) bool {
	condition = b.expandExpressions(condition)
	condition = suffix.StripNoSuffixMarkers(condition)

	props := make(map[string]string, len(item.Properties)+len(ctx))
	for name, value := range item.Properties {
		props[name] = value
	}
	for name, value := range ctx {
		props[name] = value
	}

	return conditions.Evaluate(condition, props)
}

// expandExpressions replaces $EXP[name] references, recursively. Expressions
// flagged nosuffix are wrapped in {NOSUFFIX:...} so later suffix rewriting
// leaves them alone.
func (b *TemplateBuilder) expandExpressions(condition string) string {
	return expPattern.ReplaceAllStringFunc(condition, func(match string) string {
		name := match[len("$EXP[") : len(match)-1]
		expr, ok := b.schema.Expression(name)
		if !ok {
			return match
		}
		expanded := b.expandExpressions(expr.Value)
		if expr.NoSuffix {
			return "{NOSUFFIX:" + expanded + "}"
		}
		return expanded
	})
}
