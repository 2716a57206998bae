package loaders

import (
	"os"
	"strings"

	"github.com/wabisabi926/script.skinshortcuts/internal/models"
)

// LoadProperties parses properties.xml into a PropertySchema. The file
// declares per-property fallback rules:
//
//	<properties>
//	    <property name="widgetArt">
//	        <fallback condition="widgetType=movies">Poster</fallback>
//	        <fallback>Landscape</fallback>
//	    </property>
//	</properties>
//
// A missing file yields an empty schema.
func LoadProperties(path string) (*models.PropertySchema, error) {
	root, err := loadRoot(path, "properties")
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewPropertySchema(), nil
		}
		return nil, err
	}

	schema := models.NewPropertySchema()

	for _, elem := range root.SelectElements("property") {
		name := attr(elem, "name")
		if name == "" {
			return nil, &ConfigError{File: path, Message: "property missing 'name' attribute"}
		}

		fb := &models.Fallback{Property: name}
		for _, ruleElem := range elem.SelectElements("fallback") {
			fb.Rules = append(fb.Rules, models.FallbackRule{
				Condition: attr(ruleElem, "condition"),
				Value:     strings.TrimSpace(ruleElem.Text()),
			})
		}
		schema.Add(fb)
	}

	return schema, nil
}
