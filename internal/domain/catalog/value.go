package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ValueKind is the closed set of attribute value kinds
type ValueKind string

const (
	KindUndefined ValueKind = "undefined"
	KindText      ValueKind = "text"
	KindNumber    ValueKind = "number"
	KindBoolean   ValueKind = "boolean"
	KindRichText  ValueKind = "richtext"
	KindImageRef  ValueKind = "image_ref"
	KindList      ValueKind = "list"
	KindJSON      ValueKind = "json"
)

// IsValid returns true if the kind is known
func (k ValueKind) IsValid() bool {
	switch k {
	case KindUndefined, KindText, KindNumber, KindBoolean, KindRichText, KindImageRef, KindList, KindJSON:
		return true
	}
	return false
}

// IsTextual returns true for kinds backed by a string
func (k ValueKind) IsTextual() bool {
	return k == KindText || k == KindRichText || k == KindImageRef
}

// Value is one attribute value. The zero value is undefined.
type Value struct {
	kind  ValueKind
	text  string
	num   decimal.Decimal
	flag  bool
	items []Value
	raw   json.RawMessage
}

// Undefined returns the undefined value
func Undefined() Value { return Value{} }

// Text returns a plain text value
func Text(s string) Value { return Value{kind: KindText, text: s} }

// RichText returns a rich text (markup) value
func RichText(s string) Value { return Value{kind: KindRichText, text: s} }

// ImageRef returns an image reference value
func ImageRef(url string) Value { return Value{kind: KindImageRef, text: url} }

// Number returns a numeric value
func Number(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }

// Boolean returns a boolean value
func Boolean(b bool) Value { return Value{kind: KindBoolean, flag: b} }

// List returns a list value
func List(items ...Value) Value {
	return Value{kind: KindList, items: append([]Value(nil), items...)}
}

// JSON returns an opaque JSON value. Invalid JSON yields undefined.
func JSON(raw []byte) Value {
	if !json.Valid(raw) {
		return Undefined()
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return Undefined()
	}
	return Value{kind: KindJSON, raw: buf.Bytes()}
}

// ValueOf converts a decoded Go value into a Value
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Undefined()
	case Value:
		return x
	case string:
		return Text(x)
	case bool:
		return Boolean(x)
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return Text(x.String())
		}
		return Number(d)
	case decimal.Decimal:
		return Number(x)
	case float64:
		return Number(decimal.NewFromFloat(x))
	case float32:
		return Number(decimal.NewFromFloat32(x))
	case int:
		return Number(decimal.NewFromInt(int64(x)))
	case int32:
		return Number(decimal.NewFromInt32(x))
	case int64:
		return Number(decimal.NewFromInt(x))
	case []string:
		items := make([]Value, len(x))
		for i, s := range x {
			items[i] = Text(s)
		}
		return Value{kind: KindList, items: items}
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = ValueOf(item)
		}
		return Value{kind: KindList, items: items}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return Undefined()
	}
	return JSON(raw)
}

// Kind returns the value kind
func (v Value) Kind() ValueKind {
	if v.kind == "" {
		return KindUndefined
	}
	return v.kind
}

// IsDefined reports whether the value carries data
func (v Value) IsDefined() bool {
	return v.Kind() != KindUndefined
}

// Items returns the elements of a list value
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return append([]Value(nil), v.items...)
}

// Raw returns the JSON encoding of the value
func (v Value) Raw() json.RawMessage {
	raw, _ := v.MarshalJSON()
	return raw
}

// Bool returns the boolean payload
func (v Value) Bool() (bool, bool) {
	return v.flag, v.kind == KindBoolean
}

// String renders the value as text
func (v Value) String() string {
	switch v.Kind() {
	case KindUndefined:
		return ""
	case KindText, KindRichText, KindImageRef:
		return v.text
	case KindNumber:
		return v.num.String()
	case KindBoolean:
		return strconv.FormatBool(v.flag)
	}
	return string(v.Raw())
}

// AsDecimal coerces the value to a number. Text is parsed best-effort with
// currency symbols and thousands separators ignored; booleans are 1 or 0.
func (v Value) AsDecimal() (decimal.Decimal, bool) {
	switch v.Kind() {
	case KindNumber:
		return v.num, true
	case KindBoolean:
		if v.flag {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	case KindText, KindRichText:
		return parseNumeric(v.text)
	}
	return decimal.Zero, false
}

// WithKind retags a value as the given kind where a lossless conversion exists
func (v Value) WithKind(kind ValueKind) Value {
	if v.Kind() == kind || !v.IsDefined() {
		return v
	}
	switch {
	case kind.IsTextual() && v.Kind().IsTextual():
		return Value{kind: kind, text: v.text}
	case kind == KindNumber && v.Kind() == KindText:
		if d, ok := parseNumeric(v.text); ok {
			return Number(d)
		}
	case kind == KindJSON:
		return JSON(v.Raw())
	}
	return v
}

// Interface returns the value as plain Go data suitable for encoding
func (v Value) Interface() any {
	switch v.Kind() {
	case KindUndefined:
		return nil
	case KindText, KindRichText, KindImageRef:
		return v.text
	case KindNumber:
		return json.Number(v.num.String())
	case KindBoolean:
		return v.flag
	case KindList:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	}
	var out any
	dec := json.NewDecoder(bytes.NewReader(v.raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}

// Equal reports whether two values have the same kind and payload
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindUndefined:
		return true
	case KindText, KindRichText, KindImageRef:
		return v.text == other.text
	case KindNumber:
		return v.num.Equal(other.num)
	case KindBoolean:
		return v.flag == other.flag
	case KindList:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	}
	return bytes.Equal(v.raw, other.raw)
}

// MarshalJSON encodes the value as plain JSON; undefined encodes as null
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind() {
	case KindUndefined:
		return []byte("null"), nil
	case KindText, KindRichText, KindImageRef:
		return json.Marshal(v.text)
	case KindNumber:
		return []byte(v.num.String()), nil
	case KindBoolean:
		return json.Marshal(v.flag)
	case KindList:
		return json.Marshal(v.items)
	}
	return v.raw, nil
}

// UnmarshalJSON decodes plain JSON. Objects become json values, strings text.
func (v *Value) UnmarshalJSON(data []byte) error {
	var decoded any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return err
	}
	*v = ValueOf(decoded)
	return nil
}

func parseNumeric(s string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+':
			return r
		}
		return -1
	}, strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ---------------------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------------------

// Attributes is the open field name to value bag of an entity
type Attributes map[string]Value

// Get returns the value of field, undefined when absent
func (a Attributes) Get(field string) Value {
	if a == nil {
		return Undefined()
	}
	return a[field]
}

// Has reports whether field is present and defined
func (a Attributes) Has(field string) bool {
	return a.Get(field).IsDefined()
}

// Clone returns a shallow copy
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
