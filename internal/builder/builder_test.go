package builder

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"github.com/wabisabi926/script.skinshortcuts/internal/models"
)

func parseXML(t *testing.T, s string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(s))
	return doc.Root()
}

func findInclude(root *etree.Element, name string) *etree.Element {
	for _, inc := range root.SelectElements("include") {
		if inc.SelectAttrValue("name", "") == name {
			return inc
		}
	}
	return nil
}

func singleMenu(items ...*models.MenuItem) []*models.Menu {
	return []*models.Menu{{Name: "mainmenu", Items: items}}
}

func TestBuild_MenuTemplate(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Templates = append(schema.Templates, &models.Template{
		Include: "widgets",
		Controls: parseXML(t, `<controls>
			<item>
				<label>$PROPERTY[name]</label>
				<skinshortcuts>visibility</skinshortcuts>
			</item>
		</controls>`),
	})

	menus := singleMenu(
		&models.MenuItem{Name: "movies", Label: "Movies"},
		&models.MenuItem{Name: "music", Label: "Music", Disabled: true},
	)

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	include := findInclude(root, "skinshortcuts-template-widgets")
	require.NotNil(t, include)

	items := include.SelectElements("item")
	require.Len(t, items, 1, "disabled items are skipped")

	require.Equal(t, "movies", items[0].SelectElement("label").Text())
	require.Equal(t,
		"String.IsEqual(Container(9000).ListItem.Property(name),movies)",
		items[0].SelectElement("visible").Text())
}

func TestBuild_ContextLayering(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Templates = append(schema.Templates, &models.Template{
		Include:  "layered",
		IDPrefix: "widget",
		Properties: []models.TemplateProperty{
			{Name: "widgetType", From: "widgetType"},
			{Name: "layout", Value: "poster", Condition: "widgetType=movies"},
			{Name: "layout", Value: "landscape"},
		},
		Vars: []models.TemplateVar{{
			Name: "color",
			Values: []models.TemplateProperty{
				{Name: "color", Value: "red", Condition: "widgetType=movies"},
				{Name: "color", Value: "blue"},
			},
		}},
		Controls: parseXML(t, `<controls><w>$PROPERTY[layout]-$PROPERTY[color]-$PROPERTY[id]</w></controls>`),
	})

	menus := singleMenu(&models.MenuItem{
		Name:       "movies",
		Properties: map[string]string{"widgetType": "movies"},
	})

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	include := findInclude(root, "skinshortcuts-template-layered")
	require.NotNil(t, include)
	require.Equal(t, "poster-red-widget1", include.SelectElement("w").Text())
}

func TestBuild_MultiOutputSuffix(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Templates = append(schema.Templates, &models.Template{
		Outputs: []models.TemplateOutput{
			{Include: "w"},
			{Include: "w", Suffix: ".2"},
		},
		Properties: []models.TemplateProperty{{Name: "path", From: "widgetPath"}},
		Controls:   parseXML(t, `<controls><p>$PROPERTY[path]</p></controls>`),
	})

	menus := singleMenu(&models.MenuItem{
		Name: "movies",
		Properties: map[string]string{
			"widgetPath":   "first",
			"widgetPath.2": "second",
		},
	})

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	include := findInclude(root, "skinshortcuts-template-w")
	require.NotNil(t, include)

	var texts []string
	for _, p := range include.SelectElements("p") {
		texts = append(texts, p.Text())
	}
	require.Equal(t, []string{"first", "second"}, texts)
}

func TestBuild_PresetFirstMatchWins(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Presets["artwork"] = &models.Preset{
		Name: "artwork",
		Rows: []models.PresetRow{
			{Condition: "widgetType=movies", Values: map[string]string{"art": "poster", "aspect": "2:3"}},
			{Values: map[string]string{"art": "icon", "aspect": "1:1"}},
		},
	}
	schema.Templates = append(schema.Templates, &models.Template{
		Include:    "presets",
		PresetRefs: []models.GroupReference{{Name: "artwork"}},
		Controls:   parseXML(t, `<controls><a>$PROPERTY[art]/$PROPERTY[aspect]</a></controls>`),
	})

	menus := singleMenu(
		&models.MenuItem{Name: "movies", Properties: map[string]string{"widgetType": "movies"}},
		&models.MenuItem{Name: "other"},
		// Preset values never override properties the item already has.
		&models.MenuItem{Name: "custom", Properties: map[string]string{"widgetType": "movies", "art": "banner"}},
	)

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	include := findInclude(root, "skinshortcuts-template-presets")
	require.NotNil(t, include)

	elems := include.SelectElements("a")
	require.Len(t, elems, 3)
	require.Equal(t, "poster/2:3", elems[0].Text())
	require.Equal(t, "icon/1:1", elems[1].Text())
	require.Equal(t, "banner/2:3", elems[2].Text())
}

func TestBuild_PropertyGroupCycle(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.PropertyGroups["first"] = &models.PropertyGroup{
		Name:       "first",
		Properties: []models.TemplateProperty{{Name: "a", Value: "1"}},
		GroupRefs:  []models.GroupReference{{Name: "second"}},
	}
	schema.PropertyGroups["second"] = &models.PropertyGroup{
		Name:       "second",
		Properties: []models.TemplateProperty{{Name: "b", Value: "2"}},
		GroupRefs:  []models.GroupReference{{Name: "first"}},
	}
	schema.Templates = append(schema.Templates, &models.Template{
		Include:        "cyclic",
		PropertyGroups: []models.GroupReference{{Name: "first"}},
		Controls:       parseXML(t, `<controls><v>$PROPERTY[a]$PROPERTY[b]</v></controls>`),
	})

	menus := singleMenu(&models.MenuItem{Name: "movies"})

	// Must terminate; both groups applied once.
	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	include := findInclude(root, "skinshortcuts-template-cyclic")
	require.NotNil(t, include)
	require.Equal(t, "12", include.SelectElement("v").Text())
}

func TestBuild_TemplateOnly(t *testing.T) {
	schema := models.NewTemplateSchema()
	controls := `<controls><x/></controls>`
	schema.Templates = append(schema.Templates,
		&models.Template{Include: "suppressed", TemplateOnly: "true", Controls: parseXML(t, controls)},
		&models.Template{Include: "autoused", TemplateOnly: "auto", Controls: parseXML(t, controls)},
		&models.Template{Include: "autounused", TemplateOnly: "auto", Controls: parseXML(t, controls)},
	)

	menus := singleMenu(&models.MenuItem{
		Name: "movies",
		Properties: map[string]string{
			"widgetTarget": "$INCLUDE[skinshortcuts-template-autoused]",
		},
	})

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	require.Nil(t, findInclude(root, "skinshortcuts-template-suppressed"))
	require.NotNil(t, findInclude(root, "skinshortcuts-template-autoused"))
	require.Nil(t, findInclude(root, "skinshortcuts-template-autounused"))
}

func TestBuild_EmptyIncludeStub(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Templates = append(schema.Templates, &models.Template{
		Include:    "nomatch",
		Conditions: []string{"missing=1"},
		Controls:   parseXML(t, `<controls><x/></controls>`),
	})

	menus := singleMenu(&models.MenuItem{Name: "movies"})

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	include := findInclude(root, "skinshortcuts-template-nomatch")
	require.NotNil(t, include)

	desc := include.SelectElement("description")
	require.NotNil(t, desc)
	require.Equal(t, "Automatically generated - no menu items matched this template", desc.Text())
}

func TestBuild_IncludeMarkers(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Includes["snippet"] = &models.IncludeDefinition{
		Name:     "snippet",
		Controls: parseXML(t, `<include name="snippet"><item>inner-$PROPERTY[name]</item></include>`),
	}
	schema.Templates = append(schema.Templates, &models.Template{
		Include: "markers",
		Controls: parseXML(t, `<controls>
			<skinshortcuts include="snippet"/>
			<skinshortcuts include="snippet" wrap="true"/>
			<skinshortcuts include="snippet" condition="missing=1"/>
			<skinshortcuts include="ghost"/>
		</controls>`),
	})

	menus := singleMenu(&models.MenuItem{Name: "movies"})

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	include := findInclude(root, "skinshortcuts-template-markers")
	require.NotNil(t, include)

	children := include.ChildElements()
	require.Len(t, children, 2)

	// Unwrapped expansion.
	require.Equal(t, "item", children[0].Tag)
	require.Equal(t, "inner-movies", children[0].Text())

	// Wrapped expansion.
	require.Equal(t, "include", children[1].Tag)
	require.Equal(t, "snippet", children[1].SelectAttrValue("name", ""))
	require.Equal(t, "inner-movies", children[1].SelectElement("item").Text())
}

func TestBuild_ItemsIteration(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.ItemsTemplates["widgetitems"] = &models.ItemsDefinition{
		Name:     "widgetitems",
		Source:   "widgets",
		Controls: parseXML(t, `<controls><item><label>$PROPERTY[label]/$PARENT[name]</label></item></controls>`),
	}
	schema.Templates = append(schema.Templates, &models.Template{
		Include:  "withitems",
		Controls: parseXML(t, `<controls><skinshortcuts insert="widgetitems"/></controls>`),
	})

	menus := []*models.Menu{
		{Name: "mainmenu", Items: []*models.MenuItem{
			{Name: "movies"},
			{Name: "music"}, // no linked collection: empty expansion
		}},
		{Name: "movies.widgets", IsSubmenu: true, Items: []*models.MenuItem{
			{Name: "w1", Label: "First"},
			{Name: "w2", Label: "Second", Disabled: true},
		}},
	}

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	include := findInclude(root, "skinshortcuts-template-withitems")
	require.NotNil(t, include)

	items := include.SelectElements("item")
	require.Len(t, items, 1)
	require.Equal(t, "First/movies", items[0].SelectElement("label").Text())
}

func TestBuild_ItemsFilter(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.ItemsTemplates["filtered"] = &models.ItemsDefinition{
		Name:     "filtered",
		Source:   "widgets",
		Filter:   "kind=widget",
		Controls: parseXML(t, `<controls><item>$PROPERTY[name]</item></controls>`),
	}
	schema.Templates = append(schema.Templates, &models.Template{
		Include:  "filtering",
		Controls: parseXML(t, `<controls><skinshortcuts insert="filtered"/></controls>`),
	})

	menus := []*models.Menu{
		{Name: "mainmenu", Items: []*models.MenuItem{{Name: "movies"}}},
		{Name: "movies.widgets", IsSubmenu: true, Items: []*models.MenuItem{
			{Name: "w1", Properties: map[string]string{"kind": "widget"}},
			{Name: "w2", Properties: map[string]string{"kind": "shortcut"}},
		}},
	}

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	include := findInclude(root, "skinshortcuts-template-filtering")
	require.NotNil(t, include)

	items := include.SelectElements("item")
	require.Len(t, items, 1)
	require.Equal(t, "w1", items[0].Text())
}

func TestBuild_Variables(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Templates = append(schema.Templates, &models.Template{
		Include: "withvars",
		Variables: []models.VariableDefinition{
			{
				Name:    "View-$PROPERTY[name]",
				Content: parseXML(t, `<variable name="View-$PROPERTY[name]"><value>$PROPERTY[name]</value></variable>`),
			},
			{
				Name:    "Shared",
				Content: parseXML(t, `<variable name="Shared"><value condition="c-$PROPERTY[name]">x</value></variable>`),
			},
		},
		Controls: parseXML(t, `<controls><x/></controls>`),
	})

	menus := singleMenu(
		&models.MenuItem{Name: "movies"},
		&models.MenuItem{Name: "music"},
	)

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	var variableNames []string
	for _, v := range root.SelectElements("variable") {
		variableNames = append(variableNames, v.SelectAttrValue("name", ""))
	}
	require.Equal(t, []string{"View-movies", "Shared", "View-music"}, variableNames)

	// Same-named variables merge: one element, values from both entities.
	for _, v := range root.SelectElements("variable") {
		if v.SelectAttrValue("name", "") == "Shared" {
			require.Len(t, v.SelectElements("value"), 2)
		}
	}

	// Variables precede includes at the root.
	children := root.ChildElements()
	require.Equal(t, "variable", children[0].Tag)
	require.Equal(t, "include", children[len(children)-1].Tag)
}

func TestBuild_IncludeTextConversion(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Templates = append(schema.Templates, &models.Template{
		Include:  "textinc",
		Controls: parseXML(t, `<controls><content>before $INCLUDE[common] after</content></controls>`),
	})

	menus := singleMenu(&models.MenuItem{Name: "movies"})

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	content := findInclude(root, "skinshortcuts-template-textinc").SelectElement("content")
	require.NotNil(t, content)

	inner := content.SelectElement("include")
	require.NotNil(t, inner)
	require.Equal(t, "common", inner.Text())
}

func TestBuild_ListMode(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Templates = append(schema.Templates, &models.Template{
		Include: "listy",
		Build:   models.BuildModeList,
		ListItems: []models.ListItem{
			{Attributes: map[string]string{"name": "a", "custom": "x"}},
			{Attributes: map[string]string{"name": "b", "custom": "y"}},
		},
		Controls: parseXML(t, `<controls><i>$PROPERTY[custom]</i></controls>`),
	})

	root := NewTemplateBuilder(schema, nil, "", nil).Build()

	include := findInclude(root, "skinshortcuts-template-listy")
	require.NotNil(t, include)

	var texts []string
	for _, i := range include.SelectElements("i") {
		texts = append(texts, i.Text())
	}
	require.Equal(t, []string{"x", "y"}, texts)
}

func TestBuild_RawMode(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Templates = append(schema.Templates, &models.Template{
		Include:  "rawy",
		Build:    models.BuildModeRaw,
		Params:   []models.TemplateParam{{Name: "width", Default: "100"}},
		Controls: parseXML(t, `<controls><i>$MATH[width + 10]</i></controls>`),
	})

	root := NewTemplateBuilder(schema, nil, "", nil).Build()

	include := findInclude(root, "skinshortcuts-template-rawy")
	require.NotNil(t, include)
	require.Equal(t, "110", include.SelectElement("i").Text())
}

func TestBuild_Fallbacks(t *testing.T) {
	propertySchema := models.NewPropertySchema()
	propertySchema.Add(&models.Fallback{
		Property: "widgetArt",
		Rules: []models.FallbackRule{
			{Condition: "widgetType=movies", Value: "poster"},
			{Value: "icon"},
		},
	})

	schema := models.NewTemplateSchema()
	schema.Templates = append(schema.Templates, &models.Template{
		Include:  "fb",
		Controls: parseXML(t, `<controls><a>$PROPERTY[widgetArt]</a></controls>`),
	})

	menus := singleMenu(
		&models.MenuItem{Name: "movies", Properties: map[string]string{"widgetType": "movies"}},
		&models.MenuItem{Name: "other"},
		&models.MenuItem{Name: "set", Properties: map[string]string{"widgetArt": "banner"}},
	)

	root := NewTemplateBuilder(schema, menus, "", propertySchema).Build()

	elems := findInclude(root, "skinshortcuts-template-fb").SelectElements("a")
	require.Len(t, elems, 3)
	require.Equal(t, "poster", elems[0].Text())
	require.Equal(t, "icon", elems[1].Text())
	require.Equal(t, "banner", elems[2].Text())
}

func TestBuild_FallbackSuffixVariants(t *testing.T) {
	propertySchema := models.NewPropertySchema()
	propertySchema.Add(&models.Fallback{
		Property: "widgetArt",
		Rules: []models.FallbackRule{
			{Condition: "widgetType=movies", Value: "poster"},
			{Value: "icon"},
		},
	})

	schema := models.NewTemplateSchema()
	schema.Templates = append(schema.Templates, &models.Template{
		Include:  "slots",
		Controls: parseXML(t, `<controls><a>$PROPERTY[widgetArt]</a><b>$PROPERTY[widgetArt.2]</b></controls>`),
	})

	// widgetType.2 puts the ".2" suffix in use, so the fallback also fills
	// widgetArt.2 with its condition rewritten to widgetType.2.
	menus := singleMenu(&models.MenuItem{Name: "movies", Properties: map[string]string{
		"widgetType":   "movies",
		"widgetType.2": "music",
	}})

	root := NewTemplateBuilder(schema, menus, "", propertySchema).Build()

	include := findInclude(root, "skinshortcuts-template-slots")
	require.Equal(t, "poster", include.SelectElement("a").Text())
	require.Equal(t, "icon", include.SelectElement("b").Text())
}

func TestBuild_PresetGroupFirstMatch(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Presets["posterpreset"] = &models.Preset{
		Name: "posterpreset",
		Rows: []models.PresetRow{{Values: map[string]string{"art": "poster"}}},
	}
	schema.PresetGroups["artgroup"] = &models.PresetGroup{
		Name: "artgroup",
		Children: []models.PresetGroupChild{
			{PresetName: "posterpreset", Condition: "widgetType=movies"},
			{Values: map[string]string{"art": "icon"}},
		},
	}
	schema.Templates = append(schema.Templates, &models.Template{
		Include:         "arts",
		PresetGroupRefs: []models.GroupReference{{Name: "artgroup"}},
		Controls:        parseXML(t, `<controls><a>$PROPERTY[art]</a></controls>`),
	})

	menus := singleMenu(
		&models.MenuItem{Name: "movies", Properties: map[string]string{"widgetType": "movies"}},
		&models.MenuItem{Name: "music", Properties: map[string]string{"widgetType": "music"}},
	)

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	elems := findInclude(root, "skinshortcuts-template-arts").SelectElements("a")
	require.Len(t, elems, 2)
	require.Equal(t, "poster", elems[0].Text(), "matching child supplies its preset's values")
	require.Equal(t, "icon", elems[1].Text(), "unconditional child catches the rest")
}

func TestBuild_VariableGroupCycle(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.VariableDefinitions["viewvar"] = &models.VariableDefinition{
		Name:    "viewvar",
		Output:  "V-$PROPERTY[name]",
		Content: parseXML(t, `<variable><value>$PROPERTY[name]</value></variable>`),
	}
	schema.VariableGroups["g1"] = &models.VariableGroup{
		Name:       "g1",
		References: []models.VariableReference{{Name: "viewvar"}},
		GroupRefs:  []models.GroupReference{{Name: "g2"}},
	}
	schema.VariableGroups["g2"] = &models.VariableGroup{
		Name:      "g2",
		GroupRefs: []models.GroupReference{{Name: "g1"}},
	}
	schema.Templates = append(schema.Templates, &models.Template{
		Include:        "cyclic",
		VariableGroups: []models.GroupReference{{Name: "g1"}},
		Controls:       parseXML(t, `<controls><x/></controls>`),
	})

	menus := singleMenu(&models.MenuItem{Name: "movies"})

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	var names []string
	for _, v := range root.SelectElements("variable") {
		names = append(names, v.SelectAttrValue("name", ""))
	}
	require.Equal(t, []string{"V-movies"}, names, "the g1/g2 cycle expands each group once")
}

func TestBuild_VariableGroupNestedOrder(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.VariableDefinitions["inner"] = &models.VariableDefinition{
		Name:    "inner",
		Content: parseXML(t, `<variable><value>i</value></variable>`),
	}
	schema.VariableDefinitions["outer"] = &models.VariableDefinition{
		Name:    "outer",
		Content: parseXML(t, `<variable><value>o</value></variable>`),
	}
	schema.VariableGroups["outergroup"] = &models.VariableGroup{
		Name:       "outergroup",
		References: []models.VariableReference{{Name: "outer"}},
		GroupRefs:  []models.GroupReference{{Name: "innergroup"}},
	}
	schema.VariableGroups["innergroup"] = &models.VariableGroup{
		Name:       "innergroup",
		References: []models.VariableReference{{Name: "inner"}},
	}
	schema.Templates = append(schema.Templates, &models.Template{
		Include:        "ordered",
		VariableGroups: []models.GroupReference{{Name: "outergroup"}},
		Controls:       parseXML(t, `<controls><x/></controls>`),
	})

	root := NewTemplateBuilder(schema, singleMenu(&models.MenuItem{Name: "movies"}), "", nil).Build()

	var names []string
	for _, v := range root.SelectElements("variable") {
		names = append(names, v.SelectAttrValue("name", ""))
	}
	require.Equal(t, []string{"inner", "outer"}, names, "nested group variables precede the group's own")
}

func TestBuild_MenuContainerOverride(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Templates = append(schema.Templates, &models.Template{
		Include:  "vis",
		Controls: parseXML(t, `<controls><item><skinshortcuts>visibility</skinshortcuts></item></controls>`),
	})

	menus := []*models.Menu{{
		Name:      "mainmenu",
		Container: "311",
		Items:     []*models.MenuItem{{Name: "movies"}},
	}}

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	item := findInclude(root, "skinshortcuts-template-vis").SelectElement("item")
	require.Equal(t,
		"String.IsEqual(Container(311).ListItem.Property(name),movies)",
		item.SelectElement("visible").Text())
}

func TestBuild_ItemsSubmenuOverride(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.ItemsTemplates["widgetitems"] = &models.ItemsDefinition{
		Name:     "widgetitems",
		Source:   "widgets",
		Controls: parseXML(t, `<controls><item>$PROPERTY[name]</item></controls>`),
	}
	schema.Templates = append(schema.Templates, &models.Template{
		Include:  "aliased",
		Controls: parseXML(t, `<controls><skinshortcuts insert="widgetitems"/></controls>`),
	})

	// moviehub shares movies' widget collection via submenu="movies".
	menus := []*models.Menu{
		{Name: "mainmenu", Items: []*models.MenuItem{
			{Name: "moviehub", Submenu: "movies"},
		}},
		{Name: "movies.widgets", IsSubmenu: true, Items: []*models.MenuItem{
			{Name: "w1"},
		}},
	}

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	items := findInclude(root, "skinshortcuts-template-aliased").SelectElements("item")
	require.Len(t, items, 1)
	require.Equal(t, "w1", items[0].Text())
}

func TestBuild_SubmenuTemplate(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Submenus = append(schema.Submenus, &models.SubmenuTemplate{
		Include:  "submenus",
		Level:    1,
		Controls: parseXML(t, `<controls><item>$PROPERTY[label]@$PROPERTY[menu]</item></controls>`),
	})

	menus := []*models.Menu{
		{Name: "mainmenu", Items: []*models.MenuItem{{Name: "movies"}}},
		{Name: "movies.submenu", IsSubmenu: true, Items: []*models.MenuItem{
			{Name: "recent", Label: "Recent"},
			{Name: "hidden", Label: "Hidden", Disabled: true},
		}},
	}

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	include := findInclude(root, "skinshortcuts-template-submenus")
	require.NotNil(t, include)

	items := include.SelectElements("item")
	require.Len(t, items, 1)
	require.Equal(t, "Recent@movies.submenu", items[0].Text())
}

func TestBuild_Expressions(t *testing.T) {
	schema := models.NewTemplateSchema()
	schema.Expressions["isMovies"] = models.Expression{Value: "widgetType=movies"}
	schema.Templates = append(schema.Templates, &models.Template{
		Include: "exp",
		Properties: []models.TemplateProperty{
			{Name: "hit", Value: "yes", Condition: "$EXP[isMovies]"},
			{Name: "hit", Value: "no"},
		},
		Controls: parseXML(t, `<controls><e>$PROPERTY[hit]</e></controls>`),
	})

	menus := singleMenu(
		&models.MenuItem{Name: "movies", Properties: map[string]string{"widgetType": "movies"}},
		&models.MenuItem{Name: "music", Properties: map[string]string{"widgetType": "music"}},
	)

	root := NewTemplateBuilder(schema, menus, "", nil).Build()

	elems := findInclude(root, "skinshortcuts-template-exp").SelectElements("e")
	require.Len(t, elems, 2)
	require.Equal(t, "yes", elems[0].Text())
	require.Equal(t, "no", elems[1].Text())
}
