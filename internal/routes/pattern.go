package routes

import "strings"

// Pattern is an abstract route template such as "/carts/{customerID}",
// paired with the HTTP methods it serves. It is immutable after
// construction; two patterns are considered the same route when their
// template strings are equal.
type Pattern struct {
	template string
	methods  map[string]struct{}
	segments []segment
}

type segment struct {
	literal string
	param   bool
}

// NewPattern compiles a template into a Pattern. Placeholder segments use
// the "{name}" form and match exactly one non-empty path segment. An empty
// method list means the pattern serves every method.
func NewPattern(template string, methods ...string) Pattern {
	p := Pattern{template: template, segments: splitSegments(template)}
	if len(methods) > 0 {
		p.methods = make(map[string]struct{}, len(methods))
		for _, m := range methods {
			p.methods[strings.ToUpper(m)] = struct{}{}
		}
	}
	return p
}

// Template returns the identifying template string.
func (p Pattern) Template() string {
	return p.template
}

// Matches reports whether a concrete request line falls under this pattern.
func (p Pattern) Matches(method, path string) bool {
	if p.methods != nil {
		if _, ok := p.methods[strings.ToUpper(method)]; !ok {
			return false
		}
	}
	parts := splitSegments(path)
	if len(parts) != len(p.segments) {
		return false
	}
	for i, seg := range p.segments {
		if seg.param {
			if parts[i].literal == "" {
				return false
			}
			continue
		}
		if seg.literal != parts[i].literal {
			return false
		}
	}
	return true
}

func splitSegments(path string) []segment {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	segments := make([]segment, len(parts))
	for i, part := range parts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			segments[i] = segment{param: true}
			continue
		}
		segments[i] = segment{literal: part}
	}
	return segments
}
