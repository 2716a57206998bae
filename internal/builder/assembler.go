package builder

import (
	"fmt"
	"sort"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wabisabi926/script.skinshortcuts/internal/logging"
	"github.com/wabisabi926/script.skinshortcuts/internal/models"
)

const menuIncludePrefix = "skinshortcuts-"

// Assembler composes the final includes document from its producers in a
// fixed order: primary menu includes, submenu includes, then the template
// builder's variables and includes. Any producer error aborts the document.
type Assembler struct {
	menus   []*models.Menu
	builder *TemplateBuilder
	runID   string
	log     zerolog.Logger
}

// NewAssembler wires an assembler over the loaded schema and menus. Every
// run gets a fresh identifier so regenerated documents trace back to it.
func NewAssembler(schema *models.TemplateSchema, menus []*models.Menu, container string, propertySchema *models.PropertySchema) *Assembler {
	return &Assembler{
		menus:   menus,
		builder: NewTemplateBuilder(schema, menus, container, propertySchema),
		runID:   uuid.NewString(),
		log:     logging.New("assembler"),
	}
}

// RunID returns the identifier stamped on this assembler's output.
func (a *Assembler) RunID() string {
	return a.runID
}

// Assemble produces the complete includes document.
func (a *Assembler) Assemble() (*etree.Document, error) {
	a.log.Info().Str("run", a.runID).Int("menus", len(a.menus)).Msg("assembling includes document")

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	doc.CreateComment(fmt.Sprintf(" Built by skinshortcuts, run %s ", a.runID))
	root := doc.CreateElement("includes")

	for _, menu := range a.menus {
		if menu.IsSubmenu {
			continue
		}
		include, err := a.buildMenuInclude(menu)
		if err != nil {
			return nil, fmt.Errorf("menu include %q: %w", menu.Name, err)
		}
		root.AddChild(include)
	}

	for _, menu := range a.menus {
		if !menu.IsSubmenu {
			continue
		}
		include, err := a.buildMenuInclude(menu)
		if err != nil {
			return nil, fmt.Errorf("submenu include %q: %w", menu.Name, err)
		}
		root.AddChild(include)
	}

	generated := a.builder.Build()
	for _, child := range generated.ChildElements() {
		root.AddChild(child)
	}

	doc.Indent(4)
	return doc, nil
}

// buildMenuInclude renders one menu as a plain item-list include:
// label, actions, item name property and the visibility condition.
func (a *Assembler) buildMenuInclude(menu *models.Menu) (*etree.Element, error) {
	if menu.Name == "" {
		return nil, fmt.Errorf("menu without a name")
	}

	include := etree.NewElement("include")
	include.CreateAttr("name", menuIncludePrefix+menu.Name)

	for _, item := range menu.Items {
		if item.Disabled {
			continue
		}
		include.AddChild(a.buildItemElement(menu, item))
	}

	return include, nil
}

func (a *Assembler) buildItemElement(menu *models.Menu, item *models.MenuItem) *etree.Element {
	elem := etree.NewElement("item")

	label := elem.CreateElement("label")
	label.SetText(item.Label)
	if item.Label2 != "" {
		label2 := elem.CreateElement("label2")
		label2.SetText(item.Label2)
	}
	if item.Icon != "" {
		icon := elem.CreateElement("icon")
		icon.SetText(item.Icon)
	}
	if item.Thumb != "" {
		thumb := elem.CreateElement("thumb")
		thumb.SetText(item.Thumb)
	}

	for _, before := range menu.Defaults.Actions {
		if before.When == "before" {
			a.addAction(elem, before.Action, before.Condition)
		}
	}
	for _, action := range item.Actions {
		a.addAction(elem, action.Action, action.Condition)
	}
	for _, after := range menu.Defaults.Actions {
		if after.When != "before" {
			a.addAction(elem, after.Action, after.Condition)
		}
	}

	name := elem.CreateElement("property")
	name.CreateAttr("name", "name")
	name.SetText(item.Name)

	propNames := make([]string, 0, len(item.Properties))
	for propName := range item.Properties {
		propNames = append(propNames, propName)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		value := item.Properties[propName]
		if value == "" {
			continue
		}
		prop := etree.NewElement("property")
		prop.CreateAttr("name", propName)
		prop.SetText(value)
		elem.AddChild(prop)
	}

	if item.Visible != "" {
		visible := elem.CreateElement("visible")
		visible.SetText(item.Visible)
	}

	return elem
}

func (a *Assembler) addAction(parent *etree.Element, action, condition string) {
	onclick := parent.CreateElement("onclick")
	onclick.SetText(action)
	if condition != "" {
		onclick.CreateAttr("condition", condition)
	}
}
