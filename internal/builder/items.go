package builder

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/wabisabi926/script.skinshortcuts/internal/models"
)

// replaceMarkedInserts expands children carrying the insert marker into one
// copy of the referenced items template per linked-collection entry. The
// parent entity's context stays reachable through $PARENT while the sub-item
// owns $PROPERTY.
func (b *TemplateBuilder) replaceMarkedInserts(elem *etree.Element, parentCtx map[string]string, parentItem *models.MenuItem) {
	var found []*etree.Element
	for _, child := range elem.ChildElements() {
		if child.SelectAttrValue(markerInsert, "") != "" {
			found = append(found, child)
		}
	}

	for i := len(found) - 1; i >= 0; i-- {
		child := found[i]
		insertName := child.SelectAttrValue(markerInsert, "")
		at := child.Index()
		elem.RemoveChildAt(at)

		expanded := b.expandItems(insertName, parentCtx, parentItem)
		for _, entry := range expanded {
			elem.InsertChildAt(at, entry)
			at++
		}
	}
}

// expandItems produces the replacement elements for one insert point.
// Anything that prevents iteration resolves to an empty expansion.
func (b *TemplateBuilder) expandItems(insertName string, parentCtx map[string]string, parentItem *models.MenuItem) []*etree.Element {
	def := b.schema.ItemsTemplate(insertName)
	if def == nil {
		b.log.Warn().Str("items", insertName).Msg("undefined items template reference")
		return nil
	}
	if def.Controls == nil {
		return nil
	}

	if def.Condition != "" && !b.evalCondition(def.Condition, parentItem, parentCtx) {
		return nil
	}

	base := parentItem.Submenu
	if base == "" {
		base = parentItem.Name
	}
	submenu := b.menuMap[submenuName(base, def.EffectiveSource())]
	if submenu == nil || len(submenu.Items) == 0 {
		return nil
	}

	var expanded []*etree.Element
	for idx, subItem := range submenu.Items {
		if subItem.Disabled {
			continue
		}
		if def.Filter != "" && !b.evalCondition(def.Filter, subItem, nil) {
			continue
		}

		subCtx := b.buildItemsContext(subItem, idx+1, submenu)
		b.applyItemsTransformations(def, subItem, subCtx)

		for _, body := range def.Controls.ChildElements() {
			cloned := body.Copy()
			b.processItemsElement(cloned, subCtx, subItem, parentCtx, parentItem)
			expanded = append(expanded, cloned)
		}
	}
	return expanded
}

// buildItemsContext assembles the sub-item's own property snapshot: collection
// defaults, item properties, built-ins, fallbacks.
func (b *TemplateBuilder) buildItemsContext(item *models.MenuItem, idx int, submenu *models.Menu) map[string]string {
	ctx := make(map[string]string)
	for name, value := range submenu.Defaults.Properties {
		ctx[name] = value
	}
	for name, value := range item.Properties {
		ctx[name] = value
	}

	ctx["index"] = strconv.Itoa(idx)
	ctx["name"] = item.Name
	ctx["menu"] = submenu.Name
	ctx["label"] = item.Label

	b.applyFallbacks(item, ctx)
	return ctx
}

// applyItemsTransformations runs the items template's property, var, preset
// and property-group declarations against the sub-item snapshot. Items run
// without an output suffix.
func (b *TemplateBuilder) applyItemsTransformations(def *models.ItemsDefinition, item *models.MenuItem, ctx map[string]string) {
	resolved := make(map[string]bool)
	for i := range def.Properties {
		prop := &def.Properties[i]
		if resolved[prop.Name] {
			continue
		}
		if value, ok := b.resolveProperty(prop, item, ctx, ""); ok {
			ctx[prop.Name] = value
			resolved[prop.Name] = true
		}
	}

	for i := range def.Vars {
		if value, ok := b.resolveVar(&def.Vars[i], item, ctx, ""); ok {
			ctx[def.Vars[i].Name] = value
		}
	}

	for _, ref := range def.PresetRefs {
		if !b.checkRefCondition(ref.Condition, "", item, ctx) {
			continue
		}
		b.applyPreset(ref, item, ctx, "")
	}

	for _, ref := range def.PropertyGroups {
		if !b.checkRefCondition(ref.Condition, "", item, ctx) {
			continue
		}
		group := b.schema.PropertyGroup(ref.Name)
		if group == nil {
			b.log.Warn().Str("propertyGroup", ref.Name).Msg("undefined property group reference")
			continue
		}
		b.applyPropertyGroup(group, item, ctx, "", map[string]bool{group.Name: true})
	}
}

// processItemsElement substitutes text and attributes throughout an items
// template body. Items bodies carry no nested markers, so this is a plain
// recursive substitution with two namespaces in scope.
func (b *TemplateBuilder) processItemsElement(elem *etree.Element, ctx map[string]string, item *models.MenuItem, parentCtx map[string]string, parentItem *models.MenuItem) {
	b.substituteElementText(elem, func(text string) string {
		return b.substituteText(text, ctx, item, parentCtx, parentItem)
	})
	b.convertIncludeReferences(elem)
	for _, child := range elem.ChildElements() {
		b.processItemsElement(child, ctx, item, parentCtx, parentItem)
	}
}
