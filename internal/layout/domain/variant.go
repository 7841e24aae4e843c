package layout

import "fmt"

// Variant selects a document layout.
type Variant string

const (
	VariantContract       Variant = "contract"
	VariantGuarantee      Variant = "guarantee"
	VariantCardLetter     Variant = "card-letter"
	VariantApprovalLetter Variant = "approval-letter"
)

// Variants lists every supported variant in a stable order.
var Variants = []Variant{VariantContract, VariantGuarantee, VariantCardLetter, VariantApprovalLetter}

// ParseVariant validates a variant name.
func ParseVariant(value string) (Variant, error) {
	switch Variant(value) {
	case VariantContract, VariantGuarantee, VariantCardLetter, VariantApprovalLetter:
		return Variant(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, value)
	}
}
