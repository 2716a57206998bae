package models

import "github.com/beevik/etree"

// BuildMode selects how a template iterates.
type BuildMode string

const (
	// BuildModeMenu iterates the items of each menu (default).
	BuildModeMenu BuildMode = "menu"
	// BuildModeList iterates the template's inline <list> items.
	BuildModeList BuildMode = "list"
	// BuildModeRaw runs the template once with param substitution.
	BuildModeRaw BuildMode = "raw"
)

// Expression is a reusable named condition fragment referenced via $EXP[name].
// When NoSuffix is set the expanded text is protected from suffix rewriting.
type Expression struct {
	Value    string
	NoSuffix bool
}

// TemplateParam is a parameter for raw-build templates.
type TemplateParam struct {
	Name    string
	Default string
}

// TemplateProperty is a single property declaration: a literal value, a
// from-sourced value, or either of those gated by a condition.
type TemplateProperty struct {
	Name      string
	Value     string
	From      string
	Condition string
}

// TemplateVar is a multi-branch property: its values are evaluated in order
// and the first branch whose condition matches supplies the result.
type TemplateVar struct {
	Name   string
	Values []TemplateProperty
}

// PresetRow is one row of a preset lookup table.
type PresetRow struct {
	Condition string
	Values    map[string]string
}

// Preset is an ordered lookup table. The first row whose condition matches
// (or that has no condition) supplies all of its values; rows never merge.
type Preset struct {
	Name string
	Rows []PresetRow
}

// PresetGroupChild is one alternative in a preset group: either a reference
// to a named preset or a set of inline values.
type PresetGroupChild struct {
	PresetName string
	Values     map[string]string
	Condition  string
}

// PresetGroup selects between presets: children are evaluated in document
// order and the first matching child wins.
type PresetGroup struct {
	Name     string
	Children []PresetGroupChild
}

// GroupReference points at a named reusable bundle (property group, preset,
// preset group or variable group) with an optional suffix and condition
// gating the whole reference.
type GroupReference struct {
	Name      string
	Suffix    string
	Condition string
}

// PropertyGroup is a reusable bundle of property and var declarations.
// Groups may reference further groups; expansion guards against cycles.
type PropertyGroup struct {
	Name       string
	Properties []TemplateProperty
	Vars       []TemplateVar
	GroupRefs  []GroupReference
}

// IncludeDefinition is a reusable markup snippet insertable via
// <skinshortcuts include="name"/> markers.
type IncludeDefinition struct {
	Name     string
	Controls *etree.Element
}

// ListItem is one entry of a build="list" template.
type ListItem struct {
	Attributes map[string]string
}

// VariableDefinition holds the raw content of a skin <variable> element with
// $PROPERTY[...] placeholders, built once per matching entity.
type VariableDefinition struct {
	Name      string
	Condition string
	Output    string
	Content   *etree.Element
}

// VariableReference points at a global variable definition from inside a
// variable group.
type VariableReference struct {
	Name      string
	Condition string
}

// VariableGroup bundles variable references for reuse across templates.
// Nested group references compose; expansion guards against cycles.
type VariableGroup struct {
	Name       string
	References []VariableReference
	GroupRefs  []GroupReference
}

// TemplateOutput is one output slot of a template. A template with several
// outputs evaluates the same body once per output with that output's suffix.
type TemplateOutput struct {
	Include  string
	IDPrefix string
	Suffix   string
}

// ItemsDefinition describes a sub-iteration inserted into a template body via
// <skinshortcuts insert="name"/>. The iterated collection is looked up as
// {parent item name}.{Source}.
type ItemsDefinition struct {
	Name           string
	Source         string
	Condition      string
	Filter         string
	Properties     []TemplateProperty
	Vars           []TemplateVar
	PresetRefs     []GroupReference
	PropertyGroups []GroupReference
	Controls       *etree.Element
}

// EffectiveSource returns the linked-collection suffix, defaulting to the
// definition name.
func (d *ItemsDefinition) EffectiveSource() string {
	if d.Source != "" {
		return d.Source
	}
	return d.Name
}

// Template is one generation unit of the schema.
type Template struct {
	Include         string
	IDPrefix        string
	Build           BuildMode
	TemplateOnly    string // "" always build, "true" never, "auto" when assigned
	Menu            string // restrict to one menu, "" for all
	Outputs         []TemplateOutput
	Conditions      []string
	Params          []TemplateParam
	Properties      []TemplateProperty
	Vars            []TemplateVar
	PropertyGroups  []GroupReference
	PresetRefs      []GroupReference
	PresetGroupRefs []GroupReference
	ListItems       []ListItem
	Controls        *etree.Element
	Variables       []VariableDefinition
	VariableGroups  []GroupReference
}

// GetOutputs returns the declared outputs, synthesizing a single output from
// the legacy include/idprefix attributes when no <output> elements exist.
func (t *Template) GetOutputs() []TemplateOutput {
	if len(t.Outputs) > 0 {
		return t.Outputs
	}
	if t.Include != "" {
		return []TemplateOutput{{Include: t.Include, IDPrefix: t.IDPrefix}}
	}
	return nil
}

// SubmenuTemplate is the markup template for submenu includes.
type SubmenuTemplate struct {
	Include        string
	Level          int
	Name           string
	Properties     []TemplateProperty
	Vars           []TemplateVar
	PropertyGroups []GroupReference
	Controls       *etree.Element
}

// TemplateSchema is the complete, read-only contents of templates.xml.
type TemplateSchema struct {
	Expressions         map[string]Expression
	PropertyGroups      map[string]*PropertyGroup
	Includes            map[string]*IncludeDefinition
	Presets             map[string]*Preset
	PresetGroups        map[string]*PresetGroup
	VariableDefinitions map[string]*VariableDefinition
	VariableGroups      map[string]*VariableGroup
	ItemsTemplates      map[string]*ItemsDefinition
	Templates           []*Template
	Submenus            []*SubmenuTemplate
}

// NewTemplateSchema returns an empty schema with all maps initialized.
func NewTemplateSchema() *TemplateSchema {
	return &TemplateSchema{
		Expressions:         make(map[string]Expression),
		PropertyGroups:      make(map[string]*PropertyGroup),
		Includes:            make(map[string]*IncludeDefinition),
		Presets:             make(map[string]*Preset),
		PresetGroups:        make(map[string]*PresetGroup),
		VariableDefinitions: make(map[string]*VariableDefinition),
		VariableGroups:      make(map[string]*VariableGroup),
		ItemsTemplates:      make(map[string]*ItemsDefinition),
	}
}

// Expression returns the named expression and whether it exists.
func (s *TemplateSchema) Expression(name string) (Expression, bool) {
	expr, ok := s.Expressions[name]
	return expr, ok
}

// PropertyGroup returns the named property group, or nil.
func (s *TemplateSchema) PropertyGroup(name string) *PropertyGroup {
	return s.PropertyGroups[name]
}

// Include returns the named include definition, or nil.
func (s *TemplateSchema) Include(name string) *IncludeDefinition {
	return s.Includes[name]
}

// Preset returns the named preset, or nil.
func (s *TemplateSchema) Preset(name string) *Preset {
	return s.Presets[name]
}

// PresetGroup returns the named preset group, or nil.
func (s *TemplateSchema) PresetGroup(name string) *PresetGroup {
	return s.PresetGroups[name]
}

// VariableDefinition returns the named global variable definition, or nil.
func (s *TemplateSchema) VariableDefinition(name string) *VariableDefinition {
	return s.VariableDefinitions[name]
}

// VariableGroup returns the named variable group, or nil.
func (s *TemplateSchema) VariableGroup(name string) *VariableGroup {
	return s.VariableGroups[name]
}

// ItemsTemplate returns the named items definition, or nil.
func (s *TemplateSchema) ItemsTemplate(name string) *ItemsDefinition {
	return s.ItemsTemplates[name]
}
