package loaders

import (
	"os"
	"strings"

	"github.com/beevik/etree"
)

// loadRoot parses an XML file and verifies its root element tag. A missing
// file is reported via os.IsNotExist on the returned error so callers can
// treat absent configuration as empty.
func loadRoot(path, wantTag string) (*etree.Element, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, newParseError(path, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, &ConfigError{File: path, Message: "document has no root element"}
	}
	if root.Tag != wantTag {
		return nil, &ConfigError{
			File:    path,
			Message: "root element must be <" + wantTag + ">, got <" + root.Tag + ">",
		}
	}

	return root, nil
}

// attr returns a trimmed attribute value, or "" when absent.
func attr(elem *etree.Element, name string) string {
	return strings.TrimSpace(elem.SelectAttrValue(name, ""))
}

// text returns the trimmed text content of a named child, or the fallback
// when the child is absent or empty.
func text(elem *etree.Element, child, fallback string) string {
	c := elem.SelectElement(child)
	if c == nil {
		return fallback
	}
	t := strings.TrimSpace(c.Text())
	if t == "" {
		return fallback
	}
	return t
}
