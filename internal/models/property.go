package models

// FallbackRule is one conditional default for a property.
type FallbackRule struct {
	Condition string
	Value     string
}

// Fallback is an ordered rule list for one property name. Rules are tried
// top to bottom and the first rule whose condition matches (or that has no
// condition) supplies the value.
type Fallback struct {
	Property string
	Rules    []FallbackRule
}

// PropertySchema is the contents of properties.xml: per-property fallback
// values applied when an item leaves the property unset.
type PropertySchema struct {
	Fallbacks map[string]*Fallback
	order     []string
}

// NewPropertySchema returns an empty property schema.
func NewPropertySchema() *PropertySchema {
	return &PropertySchema{Fallbacks: make(map[string]*Fallback)}
}

// Add registers a fallback, preserving declaration order.
func (s *PropertySchema) Add(fb *Fallback) {
	if _, exists := s.Fallbacks[fb.Property]; !exists {
		s.order = append(s.order, fb.Property)
	}
	s.Fallbacks[fb.Property] = fb
}

// Ordered returns fallbacks in declaration order.
func (s *PropertySchema) Ordered() []*Fallback {
	out := make([]*Fallback, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.Fallbacks[name])
	}
	return out
}
