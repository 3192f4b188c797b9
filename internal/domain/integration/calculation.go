package integration

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Operation is the arithmetic applied by one calculation term
type Operation string

const (
	OperationAdd      Operation = "add"
	OperationSubtract Operation = "subtract"
	OperationMultiply Operation = "multiply"
	OperationDivide   Operation = "divide"
)

// IsValid returns true if the operation is known
func (o Operation) IsValid() bool {
	switch o {
	case OperationAdd, OperationSubtract, OperationMultiply, OperationDivide:
		return true
	}
	return false
}

// Symbol returns the infix symbol used when rendering formulas
func (o Operation) Symbol() string {
	switch o {
	case OperationSubtract:
		return "-"
	case OperationMultiply:
		return "*"
	case OperationDivide:
		return "/"
	default:
		return "+"
	}
}

// Apply combines the running result with a term value.
// Division by zero leaves the accumulator unchanged.
func (o Operation) Apply(acc, value decimal.Decimal) decimal.Decimal {
	switch o {
	case OperationAdd:
		return acc.Add(value)
	case OperationSubtract:
		return acc.Sub(value)
	case OperationMultiply:
		return acc.Mul(value)
	case OperationDivide:
		if value.IsZero() {
			return acc
		}
		return acc.Div(value)
	}
	return acc
}

// ExternalReference points a calculation term at one external record
type ExternalReference struct {
	MappingID  string     `json:"mapping_id"`
	EntityType EntityType `json:"entity_type"`
}

// CalculationPart is one term of a calculation
type CalculationPart struct {
	Reference ExternalReference `json:"external_reference"`
	FieldPath string            `json:"field_path"`
	Operation Operation         `json:"operation"`
}

// Calculation is an ordered, non-empty list of terms folded left to right
type Calculation []CalculationPart

// Normalize returns a copy with defaulted entity types and lower-cased operations
func (c Calculation) Normalize() Calculation {
	out := make(Calculation, len(c))
	for i, part := range c {
		part.Operation = Operation(strings.ToLower(strings.TrimSpace(string(part.Operation))))
		if part.Reference.EntityType == "" {
			part.Reference.EntityType = EntityTypeProduct
		}
		part.FieldPath = strings.TrimSpace(part.FieldPath)
		out[i] = part
	}
	return out
}

// Validate checks the calculation is well formed
func (c Calculation) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("%w: at least one term is required", ErrInvalidCalculation)
	}
	for i, part := range c {
		if part.Reference.MappingID == "" {
			return fmt.Errorf("%w: term %d: %w", ErrInvalidCalculation, i, ErrInvalidMappingID)
		}
		if !part.Reference.EntityType.IsValid() {
			return fmt.Errorf("%w: term %d: %w", ErrInvalidCalculation, i, ErrInvalidEntityType)
		}
		if part.FieldPath == "" {
			return fmt.Errorf("%w: term %d: field path cannot be empty", ErrInvalidCalculation, i)
		}
		if !part.Operation.IsValid() {
			return fmt.Errorf("%w: term %d: %w", ErrInvalidCalculation, i, ErrInvalidOperation)
		}
	}
	return nil
}

// Fold combines one value per term. The first value seeds the accumulator and
// its operation is not applied; every later term applies its own operation.
func (c Calculation) Fold(values []decimal.Decimal) decimal.Decimal {
	if len(c) == 0 || len(values) == 0 {
		return decimal.Zero
	}
	acc := values[0]
	for i := 1; i < len(c) && i < len(values); i++ {
		acc = c[i].Operation.Apply(acc, values[i])
	}
	return acc
}

// Formula renders the calculation for display, e.g. "product:A.data.price - product:B.data.price"
func (c Calculation) Formula() string {
	var b strings.Builder
	for i, part := range c {
		if i > 0 {
			b.WriteString(" ")
			b.WriteString(part.Operation.Symbol())
			b.WriteString(" ")
		}
		b.WriteString(string(part.Reference.EntityType))
		b.WriteString(":")
		b.WriteString(part.Reference.MappingID)
		b.WriteString(".")
		b.WriteString(part.FieldPath)
	}
	return b.String()
}
