package types

// Concern is a content unit (a question inside a discussion or provocation)
// whose supplementary context text can be regenerated. Concerns are authored
// in the static content set and are read-only here; the backend never creates
// or deletes them.
type Concern struct {
	ID         string   `json:"id" yaml:"id"`
	Text       string   `json:"text" yaml:"text"`
	References []string `json:"references" yaml:"references"`
	Context    string   `json:"context" yaml:"context"`
}

// WithContext returns a copy of the concern with its context replaced.
func (c Concern) WithContext(context string) Concern {
	out := c
	out.Context = context
	return out
}
