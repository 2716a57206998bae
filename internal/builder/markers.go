package builder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"github.com/wabisabi926/script.skinshortcuts/internal/expressions"
	"github.com/wabisabi926/script.skinshortcuts/internal/models"
)

// Internal marker attributes carried between the recursive mark pass and the
// parent's replacement pass. They never survive into the output.
const (
	markerRemove  = "_skinshortcuts_remove"
	markerInclude = "_skinshortcuts_include"
	markerWrap    = "_skinshortcuts_wrap"
	markerInsert  = "_skinshortcuts_insert"
)

var includeTextPattern = regexp.MustCompile(`\$INCLUDE\[([^\]]+)\]`)

// processControls deep-copies the raw markup body and runs the full
// substitution and marker expansion over it.
func (b *TemplateBuilder) processControls(controls *etree.Element, ctx map[string]string, item *models.MenuItem, menu *models.Menu) *etree.Element {
	result := controls.Copy()
	b.processElement(result, ctx, item, menu)
	return result
}

// processElement is the per-element state machine: marker recognition, text
// and attribute substitution, $INCLUDE conversion, recursion, then marker
// replacement once the children are processed.
func (b *TemplateBuilder) processElement(elem *etree.Element, ctx map[string]string, item *models.MenuItem, menu *models.Menu) {
	if elem.Tag == "skinshortcuts" {
		if strings.TrimSpace(elem.Text()) == "visibility" {
			container := b.container
			if menu != nil && menu.Container != "" {
				container = menu.Container
			}
			elem.Tag = "visible"
			elem.SetText(fmt.Sprintf(
				"String.IsEqual(Container(%s).ListItem.Property(name),%s)",
				container, item.Name,
			))
		}

		if includeName := elem.SelectAttrValue("include", ""); includeName != "" {
			condition := elem.SelectAttrValue("condition", "")
			if condition != "" && !b.evalCondition(condition, item, ctx) {
				elem.CreateAttr(markerRemove, "true")
				elem.RemoveAttr("include")
				elem.RemoveAttr("condition")
				elem.RemoveAttr("wrap")
				return
			}

			def := b.schema.Include(includeName)
			if def == nil || def.Controls == nil {
				b.log.Warn().Str("include", includeName).Msg("undefined include reference")
				elem.CreateAttr(markerRemove, "true")
			} else {
				elem.CreateAttr(markerInclude, includeName)
				if strings.EqualFold(elem.SelectAttrValue("wrap", ""), "true") {
					elem.CreateAttr(markerWrap, "true")
				}
			}
			elem.RemoveAttr("include")
			elem.RemoveAttr("condition")
			elem.RemoveAttr("wrap")
		}

		if insertName := elem.SelectAttrValue("insert", ""); insertName != "" {
			elem.CreateAttr(markerInsert, insertName)
			elem.RemoveAttr("insert")
			return
		}
	}

	b.substituteElementText(elem, func(text string) string {
		return b.substituteText(text, ctx, item, nil, nil)
	})

	b.convertIncludeReferences(elem)

	var toRemove []*etree.Element
	for _, child := range elem.ChildElements() {
		b.processElement(child, ctx, item, menu)
		if child.SelectAttrValue(markerRemove, "") != "" {
			toRemove = append(toRemove, child)
		}
	}

	b.replaceMarkedIncludes(elem, ctx, item, menu)
	b.replaceMarkedInserts(elem, ctx, item)

	for _, child := range toRemove {
		elem.RemoveChild(child)
	}
}

// substituteElementText applies fn to every character-data token directly
// under elem and to every attribute value.
func (b *TemplateBuilder) substituteElementText(elem *etree.Element, fn func(string) string) {
	for _, token := range elem.Child {
		if cd, ok := token.(*etree.CharData); ok && strings.TrimSpace(cd.Data) != "" {
			cd.Data = fn(cd.Data)
		}
	}
	for i := range elem.Attr {
		elem.Attr[i].Value = fn(elem.Attr[i].Value)
	}
}

// convertIncludeReferences converts residual $INCLUDE[name] tokens in
// character data into wrapped <include>name</include> child elements,
// splitting the surrounding text around the new element.
func (b *TemplateBuilder) convertIncludeReferences(elem *etree.Element) {
	for i := 0; i < len(elem.Child); i++ {
		cd, ok := elem.Child[i].(*etree.CharData)
		if !ok {
			continue
		}

		loc := includeTextPattern.FindStringSubmatchIndex(cd.Data)
		if loc == nil {
			continue
		}

		includeName := cd.Data[loc[2]:loc[3]]
		before := cd.Data[:loc[0]]
		after := cd.Data[loc[1]:]

		elem.RemoveChildAt(i)
		at := i
		if before != "" {
			elem.InsertChildAt(at, etree.NewText(before))
			at++
		}
		includeElem := etree.NewElement("include")
		includeElem.SetText(includeName)
		elem.InsertChildAt(at, includeElem)
		at++
		if after != "" {
			elem.InsertChildAt(at, etree.NewText(after))
		}
		i = at - 1
	}
}

// replaceMarkedIncludes swaps children carrying the include marker for the
// expanded contents of the referenced snippet: unwrapped children by
// default, or a single <include name="..."> element when wrap was set.
func (b *TemplateBuilder) replaceMarkedIncludes(elem *etree.Element, ctx map[string]string, item *models.MenuItem, menu *models.Menu) {
	type marked struct {
		child *etree.Element
		name  string
		wrap  bool
	}

	var found []marked
	for _, child := range elem.ChildElements() {
		if name := child.SelectAttrValue(markerInclude, ""); name != "" {
			found = append(found, marked{
				child: child,
				name:  name,
				wrap:  child.SelectAttrValue(markerWrap, "") == "true",
			})
		}
	}

	for i := len(found) - 1; i >= 0; i-- {
		m := found[i]
		def := b.schema.Include(m.name)
		if def == nil || def.Controls == nil {
			elem.RemoveChild(m.child)
			continue
		}

		expanded := b.processControls(def.Controls, ctx, item, menu)
		at := m.child.Index()
		elem.RemoveChildAt(at)

		if m.wrap {
			includeElem := etree.NewElement("include")
			includeElem.CreateAttr("name", m.name)
			for _, child := range expanded.ChildElements() {
				includeElem.AddChild(child)
			}
			elem.InsertChildAt(at, includeElem)
			continue
		}

		for _, child := range expanded.ChildElements() {
			elem.InsertChildAt(at, child)
			at++
		}
	}
}

// substituteText resolves embedded expressions in one text fragment. The
// pass order is a contract (nested expressions rely on it): $EXP, then
// $PARENT, then $PROPERTY, then $MATH, then $IF.
func (b *TemplateBuilder) substituteText(text string, ctx map[string]string, item *models.MenuItem, parentCtx map[string]string, parentItem *models.MenuItem) string {
	if strings.Contains(text, "$EXP[") {
		text = b.expandExpressions(text)
	}

	if parentItem != nil {
		text = parentPattern.ReplaceAllStringFunc(text, func(match string) string {
			name := match[len("$PARENT[") : len(match)-1]
			if value, ok := parentCtx[name]; ok {
				return value
			}
			switch name {
			case "label":
				return parentItem.Label
			case "name":
				return parentItem.Name
			}
			return parentItem.Property(name)
		})
	}

	text = propertyPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[len("$PROPERTY[") : len(match)-1]
		if value, ok := ctx[name]; ok {
			return value
		}
		return item.Property(name)
	})

	if !strings.Contains(text, "$MATH[") && !strings.Contains(text, "$IF[") {
		return text
	}

	props := make(map[string]string)
	if parentItem != nil {
		for name, value := range parentItem.Properties {
			props[name] = value
		}
	}
	for name, value := range parentCtx {
		props[name] = value
	}
	for name, value := range item.Properties {
		props[name] = value
	}
	for name, value := range ctx {
		props[name] = value
	}

	if strings.Contains(text, "$MATH[") {
		text = expressions.ProcessMath(text, props)
	}
	if strings.Contains(text, "$IF[") {
		text = expressions.ProcessIf(text, props)
	}

	return text
}
