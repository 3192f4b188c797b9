package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/signage/backend/internal/domain/integration"
)

// OptionLinkType describes how an option is tied to the integration
type OptionLinkType string

const (
	OptionLinkDirect     OptionLinkType = "direct"
	OptionLinkCalculated OptionLinkType = "calculated"
)

// OptionLink is the link descriptor of a single option. Options never inherit
// their product's link.
type OptionLink struct {
	Type          OptionLinkType          `json:"type"`
	MappingID     string                  `json:"mapping_id,omitempty"`
	EntityType    integration.EntityType  `json:"entity_type,omitempty"`
	Calculation   integration.Calculation `json:"calculation,omitempty"`
	Override      bool                    `json:"override,omitempty"`
	OverridePrice *decimal.Decimal        `json:"override_price,omitempty"`
}

// Option is a selectable variant nested inside a product
type Option struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Price       decimal.Decimal      `json:"price"`
	Attributes  Attributes           `json:"attributes,omitempty"`
	LocalFields integration.FieldSet `json:"local_fields,omitempty"`
	Link        *OptionLink          `json:"link,omitempty"`
}

// NewOption creates an unlinked option
func NewOption(name string, price decimal.Decimal) (*Option, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEntityNameRequired
	}
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	return &Option{ID: uuid.New(), Name: name, Price: price}, nil
}

// IsLinked returns true when the option has its own link descriptor
func (o *Option) IsLinked() bool {
	return o.Link != nil
}

// IsCalculated returns true for a calculated link
func (o *Option) IsCalculated() bool {
	return o.Link != nil && o.Link.Type == OptionLinkCalculated
}

// IsLocalField returns true when the option pins field locally
func (o *Option) IsLocalField(field string) bool {
	return o.LocalFields.Contains(field)
}

// LocalValue returns the option's own value for field
func (o *Option) LocalValue(field string) Value {
	if o.Attributes.Has(field) {
		return o.Attributes.Get(field)
	}
	switch field {
	case integration.FieldName:
		return Text(o.Name)
	case integration.FieldPrice:
		return Number(o.Price)
	}
	return Undefined()
}

// LinkDirect ties the option to an external record and copies its name and price
func (o *Option) LinkDirect(mappingID string, entityType integration.EntityType, name string, price decimal.NullDecimal) error {
	if strings.TrimSpace(mappingID) == "" {
		return integration.ErrInvalidMappingID
	}
	if !entityType.IsValid() {
		return integration.ErrInvalidEntityType
	}
	if name != "" {
		o.Name = name
	}
	if price.Valid {
		o.Price = price.Decimal
	}
	o.Link = &OptionLink{
		Type:       OptionLinkDirect,
		MappingID:  mappingID,
		EntityType: entityType,
	}
	return nil
}

// Unlink drops the link descriptor; the last synced name and price stay as local data
func (o *Option) Unlink() {
	o.Link = nil
}

// SetCalculation attaches a calculated link. An existing calculation override
// on a calculated link is kept.
func (o *Option) SetCalculation(calc integration.Calculation) error {
	calc = calc.Normalize()
	if err := calc.Validate(); err != nil {
		return err
	}
	link := &OptionLink{Type: OptionLinkCalculated, Calculation: calc}
	if o.IsCalculated() {
		link.Override = o.Link.Override
		link.OverridePrice = o.Link.OverridePrice
	}
	o.Link = link
	return nil
}

// SetCalculationOverride freezes a calculated option at a fixed price
func (o *Option) SetCalculationOverride(price decimal.Decimal) error {
	if !o.IsCalculated() {
		return ErrOptionNotCalculated
	}
	if price.IsNegative() {
		return ErrNegativePrice
	}
	o.Link.Override = true
	o.Link.OverridePrice = &price
	o.Price = price
	return nil
}

// ClearCalculationOverride returns a calculated option to live calculation
func (o *Option) ClearCalculationOverride() error {
	if !o.IsCalculated() {
		return ErrOptionNotCalculated
	}
	o.Link.Override = false
	o.Link.OverridePrice = nil
	return nil
}
