// Package builder turns the template schema and the loaded menus into the
// generated includes document. It hosts the context builder, the items
// iteration engine, the template instantiator and the output assembler.
package builder

import (
	"regexp"
	"strconv"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/wabisabi926/script.skinshortcuts/internal/logging"
	"github.com/wabisabi926/script.skinshortcuts/internal/models"
)

// DefaultContainer is the skin container bound by visibility markers when
// the configuration does not name one.
const DefaultContainer = "9000"

const includePrefix = "skinshortcuts-template-"

var assignedTemplatePattern = regexp.MustCompile(`\$INCLUDE\[skinshortcuts-template-([^\]]+)\]`)

// TemplateBuilder generates template includes and variables from the schema.
// It is a pure batch transform: the schema and menus are never mutated, and
// every entity gets a fresh property snapshot.
type TemplateBuilder struct {
	schema         *models.TemplateSchema
	menus          []*models.Menu
	container      string
	propertySchema *models.PropertySchema
	menuMap        map[string]*models.Menu
	assigned       map[string]bool
	log            zerolog.Logger
}

// NewTemplateBuilder prepares a builder over the given schema and menus.
// Assigned-template references are collected up front so templateonly="auto"
// suppression is decided before any generation happens.
func NewTemplateBuilder(schema *models.TemplateSchema, menus []*models.Menu, container string, propertySchema *models.PropertySchema) *TemplateBuilder {
	if container == "" {
		container = DefaultContainer
	}

	menuMap := make(map[string]*models.Menu, len(menus))
	for _, menu := range menus {
		menuMap[menu.Name] = menu
	}

	return &TemplateBuilder{
		schema:         schema,
		menus:          menus,
		container:      container,
		propertySchema: propertySchema,
		menuMap:        menuMap,
		assigned:       collectAssignedTemplates(menus),
		log:            logging.New("template-builder"),
	}
}

// collectAssignedTemplates scans every item property value for
// $INCLUDE[skinshortcuts-template-*] references. Templates declared
// templateonly="auto" are only generated when referenced here.
func collectAssignedTemplates(menus []*models.Menu) map[string]bool {
	assigned := make(map[string]bool)
	for _, menu := range menus {
		for _, item := range menu.Items {
			for _, value := range item.Properties {
				if value == "" {
					continue
				}
				for _, match := range assignedTemplatePattern.FindAllStringSubmatch(value, -1) {
					assigned[includePrefix+match[1]] = true
				}
			}
		}
	}
	return assigned
}

// Build generates all template includes and variables under one <includes>
// root. Same-named includes and variables are merged across templates and
// entities; variables sit at the root as siblings of the includes.
func (b *TemplateBuilder) Build() *etree.Element {
	root := etree.NewElement("includes")

	includes := newMergeMap()
	variables := newMergeMap()

	// templateonly per include name: "true" never generates, "auto" only
	// when an item property references the include.
	templateOnly := make(map[string]string)

	for _, tmpl := range b.schema.Templates {
		for _, output := range tmpl.GetOutputs() {
			includeName := includePrefix + output.Include

			if tmpl.TemplateOnly != "" {
				templateOnly[includeName] = tmpl.TemplateOnly
			}

			include := includes.element(includeName, newIncludeElement(includeName))

			b.buildTemplateInto(tmpl, output, include, variables)
		}
	}

	for _, sub := range b.schema.Submenus {
		b.buildSubmenuTemplate(sub, includes)
	}

	for _, varElem := range variables.ordered() {
		root.AddChild(varElem)
	}

	for _, name := range includes.names {
		switch setting := templateOnly[name]; {
		case setting == "true":
			continue
		case setting == "auto" && !b.assigned[name]:
			b.log.Debug().Str("include", name).Msg("skipping unassigned auto template")
			continue
		}

		include := includes.byName[name]
		if len(include.ChildElements()) == 0 {
			desc := include.CreateElement("description")
			desc.SetText("Automatically generated - no menu items matched this template")
		}
		root.AddChild(include)
	}

	return root
}

// buildTemplateInto evaluates one template for one output slot. Controls go
// into the include element; variables merge into the shared variable map.
func (b *TemplateBuilder) buildTemplateInto(tmpl *models.Template, output models.TemplateOutput, include *etree.Element, variables *mergeMap) {
	switch tmpl.Build {
	case models.BuildModeList:
		b.buildListTemplate(tmpl, output, include, variables)
	case models.BuildModeRaw:
		b.buildRawTemplate(tmpl, output, include, variables)
	default:
		b.buildMenuTemplate(tmpl, output, include, variables)
	}
}

// buildMenuTemplate iterates the primary collection: every enabled item of
// every (optionally filtered) menu.
func (b *TemplateBuilder) buildMenuTemplate(tmpl *models.Template, output models.TemplateOutput, include *etree.Element, variables *mergeMap) {
	for _, menu := range b.menus {
		if tmpl.Menu != "" && menu.Name != tmpl.Menu {
			continue
		}

		for idx, item := range menu.Items {
			if item.Disabled {
				continue
			}

			if !b.checkConditions(tmpl.Conditions, item, output.Suffix) {
				continue
			}

			ctx := b.buildContext(tmpl, output, item, idx+1, menu)
			b.emitEntity(tmpl, output, item, ctx, menu, include, variables)
		}
	}
}

// buildListTemplate iterates the template's inline list. Each list item's
// attributes become the entity's properties.
func (b *TemplateBuilder) buildListTemplate(tmpl *models.Template, output models.TemplateOutput, include *etree.Element, variables *mergeMap) {
	for idx, listItem := range tmpl.ListItems {
		item := &models.MenuItem{
			Name:       listItem.Attributes["name"],
			Properties: listItem.Attributes,
		}

		if !b.checkConditions(tmpl.Conditions, item, output.Suffix) {
			continue
		}

		ctx := b.buildContext(tmpl, output, item, idx+1, nil)
		b.emitEntity(tmpl, output, item, ctx, nil, include, variables)
	}
}

// buildRawTemplate runs once with the template params substituted instead of
// iterating a collection.
func (b *TemplateBuilder) buildRawTemplate(tmpl *models.Template, output models.TemplateOutput, include *etree.Element, variables *mergeMap) {
	props := make(map[string]string, len(tmpl.Params))
	for _, param := range tmpl.Params {
		props[param.Name] = param.Default
	}
	item := &models.MenuItem{Properties: props}

	if !b.checkConditions(tmpl.Conditions, item, output.Suffix) {
		return
	}

	ctx := b.buildContext(tmpl, output, item, 1, nil)
	b.emitEntity(tmpl, output, item, ctx, nil, include, variables)
}

// emitEntity instantiates the template body and variable declarations for
// one resolved entity context.
func (b *TemplateBuilder) emitEntity(tmpl *models.Template, output models.TemplateOutput, item *models.MenuItem, ctx map[string]string, menu *models.Menu, include *etree.Element, variables *mergeMap) {
	if tmpl.Controls != nil {
		controls := b.processControls(tmpl.Controls, ctx, item, menu)
		for _, child := range controls.ChildElements() {
			include.AddChild(child)
		}
	}

	for i := range tmpl.Variables {
		if varElem := b.buildVariable(&tmpl.Variables[i], ctx, item); varElem != nil {
			variables.merge(varElem)
		}
	}

	for _, groupRef := range tmpl.VariableGroups {
		effectiveSuffix := combineSuffixes(output.Suffix, groupRef.Suffix)
		b.buildVariableGroup(groupRef, ctx, item, variables, effectiveSuffix, make(map[string]bool))
	}
}

// combineSuffixes resolves the effective suffix for a reference: an explicit
// reference suffix overrides the output's default.
func combineSuffixes(base, ref string) string {
	if ref != "" {
		return ref
	}
	return base
}

// mergeMap accumulates same-named elements in first-seen order. Merging a
// duplicate appends its children to the existing element.
type mergeMap struct {
	byName map[string]*etree.Element
	names  []string
}

func newMergeMap() *mergeMap {
	return &mergeMap{byName: make(map[string]*etree.Element)}
}

// element returns the named element, creating it via make on first use.
func (m *mergeMap) element(name string, make func() *etree.Element) *etree.Element {
	if elem, ok := m.byName[name]; ok {
		return elem
	}
	elem := make()
	m.byName[name] = elem
	m.names = append(m.names, name)
	return elem
}

// merge adds elem under its name attribute, appending children when the
// name already exists.
func (m *mergeMap) merge(elem *etree.Element) {
	name := elem.SelectAttrValue("name", "")
	if name == "" {
		return
	}

	existing, ok := m.byName[name]
	if !ok {
		m.byName[name] = elem
		m.names = append(m.names, name)
		return
	}
	for _, child := range elem.ChildElements() {
		existing.AddChild(child)
	}
}

func (m *mergeMap) ordered() []*etree.Element {
	out := make([]*etree.Element, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, m.byName[name])
	}
	return out
}

func newIncludeElement(name string) func() *etree.Element {
	return func() *etree.Element {
		elem := etree.NewElement("include")
		elem.CreateAttr("name", name)
		return elem
	}
}

// entityID computes the built-in id property: idprefix + 1-based index.
func entityID(idPrefix string, idx int) string {
	if idPrefix != "" {
		return idPrefix + strconv.Itoa(idx)
	}
	return strconv.Itoa(idx)
}

// submenuName composes the linked-collection lookup key.
func submenuName(parent, source string) string {
	return parent + "." + source
}
