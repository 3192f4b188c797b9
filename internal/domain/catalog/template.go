package catalog

import "github.com/google/uuid"

// TemplateField declares one attribute of a template
type TemplateField struct {
	Name       string    `json:"name"`
	Kind       ValueKind `json:"kind"`
	Default    Value     `json:"default"`
	MappedPath string    `json:"mapped_path,omitempty"`
}

// AttributeTemplate supplies the schema and defaults for entity attributes
type AttributeTemplate struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
	Fields   []TemplateField
}

// Field returns the declaration of a template field
func (t *AttributeTemplate) Field(name string) (TemplateField, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return TemplateField{}, false
}

// Default returns the defined default of a field, retagged to the declared kind
func (t *AttributeTemplate) Default(name string) (Value, bool) {
	f, ok := t.Field(name)
	if !ok || !f.Default.IsDefined() {
		return Undefined(), false
	}
	if f.Kind != "" && f.Kind.IsValid() {
		return f.Default.WithKind(f.Kind), true
	}
	return f.Default, true
}

// MappedFields returns the fields the template maps to an external path
func (t *AttributeTemplate) MappedFields() []string {
	fields := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		if f.MappedPath != "" {
			fields = append(fields, f.Name)
		}
	}
	return fields
}
