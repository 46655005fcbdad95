package routes

import "errors"

// Source yields the route patterns one registry contributes to the matcher
// cache. Implementations must return patterns in a stable order.
type Source interface {
	Patterns() ([]Pattern, error)
}

// StaticSource collects explicitly declared endpoints. The router registers
// each (method, template) pair here as it mounts handlers, so the matcher
// sees exactly the routes the service declares by hand.
type StaticSource struct {
	order   []string
	methods map[string][]string
}

// NewStaticSource returns an empty registry of declared endpoints.
func NewStaticSource() *StaticSource {
	return &StaticSource{methods: make(map[string][]string)}
}

// Register records one declared endpoint. Registering the same template
// under several methods yields a single pattern serving all of them.
// Not safe for concurrent use; registration happens during router setup.
func (s *StaticSource) Register(method, template string) {
	if _, ok := s.methods[template]; !ok {
		s.order = append(s.order, template)
	}
	s.methods[template] = append(s.methods[template], method)
}

// Patterns returns one pattern per registered template, in registration order.
func (s *StaticSource) Patterns() ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(s.order))
	for _, template := range s.order {
		patterns = append(patterns, NewPattern(template, s.methods[template]...))
	}
	return patterns, nil
}

// ErrNoResources is returned when the resource registry is queried before
// any resource descriptor was configured.
var ErrNoResources = errors.New("routes: resource source has no resources configured")

// Resource describes a REST collection whose endpoints are generated from
// the descriptor rather than declared one by one.
type Resource struct {
	// Base is the collection template, e.g. "/carts/{customerID}/items".
	Base string
	// IDParam names the placeholder for a single element, e.g. "itemID".
	IDParam string
}

// ResourceSource generates conventional collection and element routes for
// each configured resource descriptor.
type ResourceSource struct {
	resources []Resource
}

// NewResourceSource builds the generated-route registry.
func NewResourceSource(resources ...Resource) *ResourceSource {
	return &ResourceSource{resources: resources}
}

// Patterns expands every descriptor into its collection and element
// patterns. Querying an unconfigured source is an error so a misassembled
// server surfaces during the first cache build instead of silently
// attributing nothing.
func (s *ResourceSource) Patterns() ([]Pattern, error) {
	if len(s.resources) == 0 {
		return nil, ErrNoResources
	}
	patterns := make([]Pattern, 0, len(s.resources)*2)
	for _, res := range s.resources {
		element := res.Base + "/{" + res.IDParam + "}"
		patterns = append(patterns,
			NewPattern(res.Base, "GET", "POST"),
			NewPattern(element, "GET", "PUT", "DELETE"),
		)
	}
	return patterns, nil
}
