package builder

import (
	"strconv"
	"strings"

	"github.com/wabisabi926/script.skinshortcuts/internal/models"
)

// buildSubmenuTemplate instantiates a submenu template once per enabled item
// of every matching linked collection. Level counts the dots in the
// collection name, so "movies.submenu" is level 1; Name restricts the
// template to collections under one root item.
func (b *TemplateBuilder) buildSubmenuTemplate(sub *models.SubmenuTemplate, include *mergeMap) {
	if sub.Controls == nil {
		return
	}

	target := include.element(includePrefix+sub.Include, newIncludeElement(includePrefix+sub.Include))

	for _, menu := range b.menus {
		if !menu.IsSubmenu {
			continue
		}
		if sub.Level > 0 && strings.Count(menu.Name, ".") != sub.Level {
			continue
		}
		if sub.Name != "" && !strings.HasPrefix(menu.Name, sub.Name+".") {
			continue
		}

		for idx, item := range menu.Items {
			if item.Disabled {
				continue
			}

			ctx := b.buildSubmenuContext(sub, item, idx+1, menu)
			controls := b.processControls(sub.Controls, ctx, item, menu)
			for _, child := range controls.ChildElements() {
				target.AddChild(child)
			}
		}
	}
}

func (b *TemplateBuilder) buildSubmenuContext(sub *models.SubmenuTemplate, item *models.MenuItem, idx int, menu *models.Menu) map[string]string {
	ctx := make(map[string]string)
	for name, value := range menu.Defaults.Properties {
		ctx[name] = value
	}
	for name, value := range item.Properties {
		ctx[name] = value
	}

	ctx["index"] = strconv.Itoa(idx)
	ctx["name"] = item.Name
	ctx["menu"] = menu.Name
	ctx["label"] = item.Label

	b.applyFallbacks(item, ctx)

	resolved := make(map[string]bool)
	for i := range sub.Properties {
		prop := &sub.Properties[i]
		if resolved[prop.Name] {
			continue
		}
		if value, ok := b.resolveProperty(prop, item, ctx, ""); ok {
			ctx[prop.Name] = value
			resolved[prop.Name] = true
		}
	}

	for i := range sub.Vars {
		if value, ok := b.resolveVar(&sub.Vars[i], item, ctx, ""); ok {
			ctx[sub.Vars[i].Name] = value
		}
	}

	for _, ref := range sub.PropertyGroups {
		if !b.checkRefCondition(ref.Condition, ref.Suffix, item, ctx) {
			continue
		}
		group := b.schema.PropertyGroup(ref.Name)
		if group == nil {
			b.log.Warn().Str("propertyGroup", ref.Name).Msg("undefined property group reference")
			continue
		}
		b.applyPropertyGroup(group, item, ctx, ref.Suffix, map[string]bool{group.Name: true})
	}

	return ctx
}
