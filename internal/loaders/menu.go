package loaders

import (
	"os"
	"strings"

	"github.com/beevik/etree"

	"github.com/wabisabi926/script.skinshortcuts/internal/models"
)

// LoadMenus parses menus.xml into a MenuConfig. Action overrides declared in
// the file are applied to the loaded menus before returning. A missing file
// yields an empty config.
func LoadMenus(path string) (*models.MenuConfig, error) {
	root, err := loadRoot(path, "menus")
	if err != nil {
		if os.IsNotExist(err) {
			return &models.MenuConfig{}, nil
		}
		return nil, err
	}

	config := &models.MenuConfig{}

	for _, elem := range root.SelectElements("menu") {
		menu, err := parseMenu(elem, path, false)
		if err != nil {
			return nil, err
		}
		config.Menus = append(config.Menus, menu)
	}
	for _, elem := range root.SelectElements("submenu") {
		menu, err := parseMenu(elem, path, true)
		if err != nil {
			return nil, err
		}
		config.Menus = append(config.Menus, menu)
	}

	if overridesElem := root.SelectElement("overrides"); overridesElem != nil {
		for _, elem := range overridesElem.SelectElements("action") {
			replace := attr(elem, "replace")
			action := strings.TrimSpace(elem.Text())
			if replace != "" && action != "" {
				config.ActionOverrides = append(config.ActionOverrides, models.ActionOverride{
					Replace: replace,
					Action:  action,
				})
			}
		}
	}

	applyActionOverrides(config)

	return config, nil
}

func parseMenu(elem *etree.Element, path string, isSubmenu bool) (*models.Menu, error) {
	name := attr(elem, "name")
	if name == "" {
		return nil, &ConfigError{File: path, Message: "menu missing 'name' attribute"}
	}

	menu := &models.Menu{
		Name:      name,
		Container: attr(elem, "container"),
		IsSubmenu: isSubmenu,
	}

	for _, itemElem := range elem.SelectElements("item") {
		item, err := parseMenuItem(itemElem, name, path)
		if err != nil {
			return nil, err
		}
		menu.Items = append(menu.Items, item)
	}

	menu.Defaults = parseMenuDefaults(elem.SelectElement("defaults"))

	return menu, nil
}

func parseMenuItem(elem *etree.Element, menuName, path string) (*models.MenuItem, error) {
	name := attr(elem, "name")
	if name == "" {
		return nil, &ConfigError{File: path, Message: "menu '" + menuName + "' has item without 'name'"}
	}

	label := text(elem, "label", "")
	if label == "" {
		return nil, &ConfigError{File: path, Message: "item '" + name + "' missing <label>"}
	}

	item := &models.MenuItem{
		Name:       name,
		Label:      label,
		Label2:     text(elem, "label2", ""),
		Icon:       text(elem, "icon", "DefaultShortcut.png"),
		Thumb:      text(elem, "thumb", ""),
		Visible:    text(elem, "visible", ""),
		Disabled:   strings.EqualFold(text(elem, "disabled", "false"), "true"),
		Properties: make(map[string]string),
		Submenu:    attr(elem, "submenu"),
	}

	for _, actionElem := range elem.SelectElements("action") {
		action := strings.TrimSpace(actionElem.Text())
		if action == "" {
			continue
		}
		item.Actions = append(item.Actions, models.Action{
			Action:    action,
			Condition: attr(actionElem, "condition"),
		})
	}

	for _, propElem := range elem.SelectElements("property") {
		propName := attr(propElem, "name")
		value := strings.TrimSpace(propElem.Text())
		if propName != "" && value != "" {
			item.Properties[propName] = value
		}
	}

	// widget= and background= attributes are shorthand for properties.
	if widget := attr(elem, "widget"); widget != "" {
		item.Properties["widget"] = widget
	}
	if background := attr(elem, "background"); background != "" {
		item.Properties["background"] = background
	}

	return item, nil
}

func parseMenuDefaults(elem *etree.Element) models.MenuDefaults {
	defaults := models.MenuDefaults{Properties: make(map[string]string)}
	if elem == nil {
		return defaults
	}

	for _, propElem := range elem.SelectElements("property") {
		name := attr(propElem, "name")
		value := strings.TrimSpace(propElem.Text())
		if name != "" && value != "" {
			defaults.Properties[name] = value
		}
	}

	if widget := attr(elem, "widget"); widget != "" {
		defaults.Properties["widget"] = widget
	}
	if background := attr(elem, "background"); background != "" {
		defaults.Properties["background"] = background
	}

	for _, actionElem := range elem.SelectElements("action") {
		action := strings.TrimSpace(actionElem.Text())
		if action == "" {
			continue
		}
		when := attr(actionElem, "when")
		if when == "" {
			when = "before"
		}
		defaults.Actions = append(defaults.Actions, models.DefaultAction{
			Action:    action,
			When:      when,
			Condition: attr(actionElem, "condition"),
		})
	}

	return defaults
}

// applyActionOverrides replaces deprecated action strings across all loaded
// menus. Comparison is case-insensitive.
func applyActionOverrides(config *models.MenuConfig) {
	if len(config.ActionOverrides) == 0 {
		return
	}

	overrideMap := make(map[string]string, len(config.ActionOverrides))
	for _, o := range config.ActionOverrides {
		overrideMap[strings.ToLower(o.Replace)] = o.Action
	}

	for _, menu := range config.Menus {
		for _, item := range menu.Items {
			for i := range item.Actions {
				if replacement, ok := overrideMap[strings.ToLower(item.Actions[i].Action)]; ok {
					item.Actions[i].Action = replacement
				}
			}
		}
	}
}
