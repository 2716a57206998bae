// Package models defines the skin shortcuts configuration model: menus and
// their items, the template schema loaded from templates.xml, and the
// property schema with fallback rules.
package models

// Action is a menu item action with an optional property condition.
type Action struct {
	Action    string
	Condition string
}

// MenuItem is a single entry in a menu.
type MenuItem struct {
	Name       string
	Label      string
	Label2     string
	Icon       string
	Thumb      string
	Actions    []Action
	Visible    string
	Disabled   bool
	Properties map[string]string
	Submenu    string // overrides the linked-collection lookup base name
}

// Action returns the primary action: the first unconditional one, falling
// back to the first action of any kind.
func (i *MenuItem) Action() string {
	for _, act := range i.Actions {
		if act.Condition == "" {
			return act.Action
		}
	}
	if len(i.Actions) > 0 {
		return i.Actions[0].Action
	}
	return ""
}

// Property returns a named item property, or "" when unset.
func (i *MenuItem) Property(name string) string {
	if i.Properties == nil {
		return ""
	}
	return i.Properties[name]
}

// DefaultAction is an action applied to every item in a menu.
type DefaultAction struct {
	Action    string
	When      string // "before" or "after"
	Condition string
}

// MenuDefaults holds default properties and actions for a menu's items.
type MenuDefaults struct {
	Properties map[string]string
	Actions    []DefaultAction
}

// Menu is an ordered collection of menu items. Linked collections (submenus,
// widget lists) are Menus named {parent item name}.{source suffix}.
type Menu struct {
	Name      string
	Items     []*MenuItem
	Defaults  MenuDefaults
	Container string // overrides the configured container in visibility conditions
	IsSubmenu bool
}

// Item returns the named item, or nil when absent.
func (m *Menu) Item(name string) *MenuItem {
	for _, item := range m.Items {
		if item.Name == name {
			return item
		}
	}
	return nil
}

// ActionOverride replaces a deprecated action string with its replacement.
type ActionOverride struct {
	Replace string
	Action  string
}

// MenuConfig is the full contents of menus.xml.
type MenuConfig struct {
	Menus           []*Menu
	ActionOverrides []ActionOverride
}
