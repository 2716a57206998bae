package loaders

import (
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/wabisabi926/script.skinshortcuts/internal/models"
)

// LoadTemplates parses templates.xml into a TemplateSchema. A missing file
// yields an empty schema; a malformed file is a fatal ConfigError.
func LoadTemplates(path string) (*models.TemplateSchema, error) {
	root, err := loadRoot(path, "templates")
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewTemplateSchema(), nil
		}
		return nil, err
	}

	l := &templateLoader{path: path, schema: models.NewTemplateSchema()}
	if err := l.load(root); err != nil {
		return nil, err
	}
	return l.schema, nil
}

type templateLoader struct {
	path   string
	schema *models.TemplateSchema
}

func (l *templateLoader) load(root *etree.Element) error {
	l.parseExpressions(root)
	if err := l.parsePresets(root); err != nil {
		return err
	}
	l.parsePresetGroups(root)
	l.parsePropertyGroups(root)
	l.parseVariables(root)
	l.parseIncludes(root)

	for _, elem := range root.SelectElements("template") {
		if itemsName := attr(elem, "items"); itemsName != "" {
			l.schema.ItemsTemplates[itemsName] = l.parseItemsTemplate(elem, itemsName)
			continue
		}
		tmpl, err := l.parseTemplate(elem)
		if err != nil {
			return err
		}
		l.schema.Templates = append(l.schema.Templates, tmpl)
	}

	for _, elem := range root.SelectElements("submenu") {
		l.schema.Submenus = append(l.schema.Submenus, l.parseSubmenu(elem))
	}

	return nil
}

func (l *templateLoader) parseExpressions(root *etree.Element) {
	section := root.SelectElement("expressions")
	if section == nil {
		return
	}
	for _, elem := range section.SelectElements("expression") {
		name := attr(elem, "name")
		if name == "" {
			continue
		}
		l.schema.Expressions[name] = models.Expression{
			Value:    strings.TrimSpace(elem.Text()),
			NoSuffix: strings.EqualFold(attr(elem, "nosuffix"), "true"),
		}
	}
}

func (l *templateLoader) parsePresets(root *etree.Element) error {
	section := root.SelectElement("presets")
	if section == nil {
		return nil
	}
	for _, elem := range section.SelectElements("preset") {
		name := attr(elem, "name")
		if name == "" {
			return &ConfigError{File: l.path, Message: "preset missing name attribute"}
		}

		preset := &models.Preset{Name: name}
		for _, valuesElem := range elem.SelectElements("values") {
			row := models.PresetRow{
				Condition: attr(valuesElem, "condition"),
				Values:    make(map[string]string),
			}
			for _, a := range valuesElem.Attr {
				if a.Key != "condition" {
					row.Values[a.Key] = a.Value
				}
			}
			preset.Rows = append(preset.Rows, row)
		}
		l.schema.Presets[name] = preset
	}
	return nil
}

func (l *templateLoader) parsePresetGroups(root *etree.Element) {
	section := root.SelectElement("presetGroups")
	if section == nil {
		return
	}
	for _, elem := range section.SelectElements("presetGroup") {
		name := attr(elem, "name")
		if name == "" {
			continue
		}

		group := &models.PresetGroup{Name: name}
		for _, child := range elem.ChildElements() {
			switch child.Tag {
			case "preset":
				presetName := attr(child, "content")
				if presetName == "" {
					continue
				}
				group.Children = append(group.Children, models.PresetGroupChild{
					PresetName: presetName,
					Condition:  attr(child, "condition"),
				})
			case "values":
				values := make(map[string]string)
				for _, a := range child.Attr {
					if a.Key != "condition" {
						values[a.Key] = a.Value
					}
				}
				group.Children = append(group.Children, models.PresetGroupChild{
					Values:    values,
					Condition: attr(child, "condition"),
				})
			}
		}
		l.schema.PresetGroups[name] = group
	}
}

func (l *templateLoader) parsePropertyGroups(root *etree.Element) {
	section := root.SelectElement("propertyGroups")
	if section == nil {
		return
	}
	for _, elem := range section.SelectElements("propertyGroup") {
		name := attr(elem, "name")
		if name == "" {
			continue
		}

		group := &models.PropertyGroup{Name: name}
		for _, propElem := range elem.SelectElements("property") {
			if prop, ok := l.parseProperty(propElem); ok {
				group.Properties = append(group.Properties, prop)
			}
		}
		for _, varElem := range elem.SelectElements("var") {
			if v, ok := l.parseVar(varElem); ok {
				group.Vars = append(group.Vars, v)
			}
		}
		for _, refElem := range elem.SelectElements("propertyGroup") {
			if ref, ok := l.parseGroupRef(refElem); ok {
				group.GroupRefs = append(group.GroupRefs, ref)
			}
		}
		l.schema.PropertyGroups[name] = group
	}
}

func (l *templateLoader) parseVariables(root *etree.Element) {
	section := root.SelectElement("variables")
	if section == nil {
		return
	}

	for _, elem := range section.SelectElements("variable") {
		if def := l.parseVariableDefinition(elem); def != nil {
			l.schema.VariableDefinitions[def.Name] = def
		}
	}

	for _, elem := range section.SelectElements("variableGroup") {
		name := attr(elem, "name")
		if name == "" {
			continue
		}

		group := &models.VariableGroup{Name: name}
		for _, varElem := range elem.SelectElements("variable") {
			refName := attr(varElem, "content")
			if refName == "" {
				continue
			}
			group.References = append(group.References, models.VariableReference{
				Name:      refName,
				Condition: attr(varElem, "condition"),
			})
		}
		for _, groupElem := range elem.SelectElements("variableGroup") {
			if refName := attr(groupElem, "content"); refName != "" {
				group.GroupRefs = append(group.GroupRefs, models.GroupReference{Name: refName})
			}
		}
		l.schema.VariableGroups[name] = group
	}
}

func (l *templateLoader) parseIncludes(root *etree.Element) {
	section := root.SelectElement("includes")
	if section == nil {
		return
	}
	for _, elem := range section.SelectElements("include") {
		name := attr(elem, "name")
		if name == "" {
			continue
		}
		def := &models.IncludeDefinition{Name: name}
		if len(elem.ChildElements()) > 0 {
			def.Controls = elem.Copy()
		}
		l.schema.Includes[name] = def
	}
}

func (l *templateLoader) parseTemplate(elem *etree.Element) (*models.Template, error) {
	tmpl := &models.Template{
		Include:      attr(elem, "include"),
		IDPrefix:     attr(elem, "idprefix"),
		TemplateOnly: strings.ToLower(attr(elem, "templateonly")),
		Menu:         attr(elem, "menu"),
	}

	for _, outputElem := range elem.SelectElements("output") {
		include := attr(outputElem, "include")
		if include == "" {
			continue
		}
		tmpl.Outputs = append(tmpl.Outputs, models.TemplateOutput{
			Include:  include,
			IDPrefix: attr(outputElem, "idprefix"),
			Suffix:   attr(outputElem, "suffix"),
		})
	}

	if len(tmpl.Outputs) == 0 && tmpl.Include == "" {
		return nil, &ConfigError{
			File:    l.path,
			Message: "template missing include attribute or output elements",
		}
	}

	switch strings.ToLower(attr(elem, "build")) {
	case "list":
		tmpl.Build = models.BuildModeList
	case "true":
		tmpl.Build = models.BuildModeRaw
	default:
		tmpl.Build = models.BuildModeMenu
	}

	for _, condElem := range elem.SelectElements("condition") {
		if cond := strings.TrimSpace(condElem.Text()); cond != "" {
			tmpl.Conditions = append(tmpl.Conditions, cond)
		}
	}

	for _, paramElem := range elem.SelectElements("param") {
		name := attr(paramElem, "name")
		if name == "" {
			continue
		}
		tmpl.Params = append(tmpl.Params, models.TemplateParam{
			Name:    name,
			Default: attr(paramElem, "default"),
		})
	}

	// Declaration order matters: properties, vars and references are
	// evaluated in the order they appear per kind.
	for _, child := range elem.ChildElements() {
		switch child.Tag {
		case "property":
			if prop, ok := l.parseProperty(child); ok {
				tmpl.Properties = append(tmpl.Properties, prop)
			}
		case "var":
			if v, ok := l.parseVar(child); ok {
				tmpl.Vars = append(tmpl.Vars, v)
			}
		case "propertyGroup":
			if ref, ok := l.parseGroupRef(child); ok {
				tmpl.PropertyGroups = append(tmpl.PropertyGroups, ref)
			}
		case "preset":
			if ref, ok := l.parseGroupRef(child); ok {
				tmpl.PresetRefs = append(tmpl.PresetRefs, ref)
			}
		case "presetGroup":
			if ref, ok := l.parseGroupRef(child); ok {
				tmpl.PresetGroupRefs = append(tmpl.PresetGroupRefs, ref)
			}
		case "variableGroup":
			if ref, ok := l.parseGroupRef(child); ok {
				tmpl.VariableGroups = append(tmpl.VariableGroups, ref)
			}
		}
	}

	if variablesElem := elem.SelectElement("variables"); variablesElem != nil {
		for _, varElem := range variablesElem.SelectElements("variable") {
			if def := l.parseVariableDefinition(varElem); def != nil {
				tmpl.Variables = append(tmpl.Variables, *def)
			}
		}
	}

	if listElem := elem.SelectElement("list"); listElem != nil {
		for _, itemElem := range listElem.SelectElements("item") {
			item := models.ListItem{Attributes: make(map[string]string)}
			for _, a := range itemElem.Attr {
				item.Attributes[a.Key] = a.Value
			}
			tmpl.ListItems = append(tmpl.ListItems, item)
		}
	}

	if controls := elem.SelectElement("controls"); controls != nil {
		tmpl.Controls = controls.Copy()
	}

	return tmpl, nil
}

func (l *templateLoader) parseItemsTemplate(elem *etree.Element, name string) *models.ItemsDefinition {
	def := &models.ItemsDefinition{
		Name:   name,
		Source: attr(elem, "source"),
		Filter: attr(elem, "filter"),
	}

	if condElem := elem.SelectElement("condition"); condElem != nil {
		def.Condition = strings.TrimSpace(condElem.Text())
	}

	for _, child := range elem.ChildElements() {
		switch child.Tag {
		case "property":
			if prop, ok := l.parseProperty(child); ok {
				def.Properties = append(def.Properties, prop)
			}
		case "var":
			if v, ok := l.parseVar(child); ok {
				def.Vars = append(def.Vars, v)
			}
		case "preset":
			if ref, ok := l.parseGroupRef(child); ok {
				def.PresetRefs = append(def.PresetRefs, ref)
			}
		case "propertyGroup":
			if ref, ok := l.parseGroupRef(child); ok {
				def.PropertyGroups = append(def.PropertyGroups, ref)
			}
		}
	}

	if controls := elem.SelectElement("controls"); controls != nil {
		def.Controls = controls.Copy()
	}

	return def
}

func (l *templateLoader) parseSubmenu(elem *etree.Element) *models.SubmenuTemplate {
	level, _ := strconv.Atoi(attr(elem, "level"))

	sub := &models.SubmenuTemplate{
		Include: attr(elem, "include"),
		Level:   level,
		Name:    attr(elem, "name"),
	}

	for _, child := range elem.ChildElements() {
		switch child.Tag {
		case "property":
			if prop, ok := l.parseProperty(child); ok {
				sub.Properties = append(sub.Properties, prop)
			}
		case "var":
			if v, ok := l.parseVar(child); ok {
				sub.Vars = append(sub.Vars, v)
			}
		case "propertyGroup":
			if ref, ok := l.parseGroupRef(child); ok {
				sub.PropertyGroups = append(sub.PropertyGroups, ref)
			}
		}
	}

	if controls := elem.SelectElement("controls"); controls != nil {
		sub.Controls = controls.Copy()
	}

	return sub
}

func (l *templateLoader) parseProperty(elem *etree.Element) (models.TemplateProperty, bool) {
	name := attr(elem, "name")
	if name == "" {
		return models.TemplateProperty{}, false
	}
	return models.TemplateProperty{
		Name:      name,
		Value:     strings.TrimSpace(elem.Text()),
		From:      attr(elem, "from"),
		Condition: attr(elem, "condition"),
	}, true
}

func (l *templateLoader) parseVar(elem *etree.Element) (models.TemplateVar, bool) {
	name := attr(elem, "name")
	if name == "" {
		return models.TemplateVar{}, false
	}

	v := models.TemplateVar{Name: name}
	for _, valueElem := range elem.SelectElements("value") {
		v.Values = append(v.Values, models.TemplateProperty{
			Name:      name,
			Value:     strings.TrimSpace(valueElem.Text()),
			Condition: attr(valueElem, "condition"),
		})
	}
	return v, true
}

// parseGroupRef parses any of the content="" style reference elements
// (propertyGroup, preset, presetGroup, variableGroup).
func (l *templateLoader) parseGroupRef(elem *etree.Element) (models.GroupReference, bool) {
	name := attr(elem, "content")
	if name == "" {
		return models.GroupReference{}, false
	}
	return models.GroupReference{
		Name:      name,
		Suffix:    attr(elem, "suffix"),
		Condition: attr(elem, "condition"),
	}, true
}

func (l *templateLoader) parseVariableDefinition(elem *etree.Element) *models.VariableDefinition {
	name := attr(elem, "name")
	if name == "" {
		return nil
	}
	return &models.VariableDefinition{
		Name:      name,
		Condition: attr(elem, "condition"),
		Output:    attr(elem, "output"),
		Content:   elem.Copy(),
	}
}
