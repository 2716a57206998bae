package builder

import (
	"github.com/beevik/etree"

	"github.com/wabisabi926/script.skinshortcuts/internal/models"
	"github.com/wabisabi926/script.skinshortcuts/internal/suffix"
)

// buildVariable instantiates one skin variable declaration for the current
// entity. Returns nil when the gating condition fails or the declaration has
// no body.
func (b *TemplateBuilder) buildVariable(def *models.VariableDefinition, ctx map[string]string, item *models.MenuItem) *etree.Element {
	if def.Content == nil {
		return nil
	}
	if def.Condition != "" && !b.evalCondition(def.Condition, item, ctx) {
		return nil
	}

	name := def.Name
	if def.Output != "" {
		name = def.Output
	}
	name = b.substituteText(name, ctx, item, nil, nil)
	if name == "" {
		return nil
	}

	result := def.Content.Copy()
	result.Tag = "variable"
	for i := len(result.Attr) - 1; i >= 0; i-- {
		result.RemoveAttr(result.Attr[i].Key)
	}
	result.CreateAttr("name", name)
	b.substituteTree(result, ctx, item)
	return result
}

// buildVariableGroup expands a variable group reference: nested groups
// recurse first, then each member reference resolves against the global
// definitions, so nested groups' variables land ahead of the group's own in
// the merged output. Reference conditions are rewritten for the slot suffix
// before evaluation, and recursion carries a cycle guard.
func (b *TemplateBuilder) buildVariableGroup(ref models.GroupReference, ctx map[string]string, item *models.MenuItem, variables *mergeMap, sfx string, inProgress map[string]bool) {
	group := b.schema.VariableGroup(ref.Name)
	if group == nil {
		b.log.Warn().Str("variableGroup", ref.Name).Msg("undefined variable group reference")
		return
	}
	inProgress[ref.Name] = true
	defer delete(inProgress, ref.Name)

	for _, nested := range group.GroupRefs {
		if inProgress[nested.Name] {
			b.log.Warn().Str("variableGroup", nested.Name).Msg("variable group reference cycle")
			continue
		}
		effectiveSuffix := combineSuffixes(sfx, nested.Suffix)
		if !b.checkRefCondition(nested.Condition, effectiveSuffix, item, ctx) {
			continue
		}
		b.buildVariableGroup(nested, ctx, item, variables, effectiveSuffix, inProgress)
	}

	for _, member := range group.References {
		if member.Condition != "" {
			condition := b.expandExpressions(member.Condition)
			if sfx != "" {
				condition = suffix.ApplyToCondition(condition, sfx)
			}
			if !b.evalCondition(condition, item, ctx) {
				continue
			}
		}

		def := b.schema.VariableDefinition(member.Name)
		if def == nil {
			b.log.Warn().Str("variable", member.Name).Msg("undefined variable reference")
			continue
		}
		if varElem := b.buildVariable(def, ctx, item); varElem != nil {
			variables.merge(varElem)
		}
	}
}

// substituteTree runs text and attribute substitution over an element and
// all of its descendants, converting residual include references as it goes.
func (b *TemplateBuilder) substituteTree(elem *etree.Element, ctx map[string]string, item *models.MenuItem) {
	b.substituteElementText(elem, func(text string) string {
		return b.substituteText(text, ctx, item, nil, nil)
	})
	b.convertIncludeReferences(elem)
	for _, child := range elem.ChildElements() {
		b.substituteTree(child, ctx, item)
	}
}
