package dom

// Attribute is a name/value pair collected from a start tag. It is built up
// one character at a time while the tokenizer scans the tag.
// https://dom.spec.whatwg.org/#attr
type Attribute struct {
	Name  string
	Value string
}

// AppendName appends a character to the attribute's name. ASCII upper
// alphas are lowercased.
func (a *Attribute) AppendName(r rune) {
	if r >= 'A' && r <= 'Z' {
		r += 0x20
	}
	a.Name += string(r)
}

// AppendValue appends a character to the attribute's value.
func (a *Attribute) AppendValue(r rune) {
	a.Value += string(r)
}

func (a Attribute) String() string {
	return a.Name + "=\"" + a.Value + "\""
}

// DedupeAttributes keeps the first occurrence of each attribute name and
// drops the rest.
// https://html.spec.whatwg.org/multipage/parsing.html#attribute-name-state
func DedupeAttributes(attrs []Attribute) []Attribute {
	if len(attrs) < 2 {
		return attrs
	}
	seen := make(map[string]struct{}, len(attrs))
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		if _, ok := seen[a.Name]; ok {
			continue
		}
		seen[a.Name] = struct{}{}
		out = append(out, a)
	}
	return out
}
