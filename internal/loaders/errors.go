// Package loaders parses the skin's XML configuration files (menus.xml,
// templates.xml, properties.xml) into the model types. Shape errors are
// fatal: no partial schema is ever returned.
package loaders

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// ConfigError describes a malformed configuration file. Line is zero when
// the XML parser could not attribute the problem to a specific line.
type ConfigError struct {
	File    string
	Line    int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// newParseError wraps an XML parse failure, recovering the line number when
// the underlying decoder reports one.
func newParseError(file string, err error) *ConfigError {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ConfigError{File: file, Line: syntaxErr.Line, Message: syntaxErr.Msg}
	}
	return &ConfigError{File: file, Message: err.Error()}
}
