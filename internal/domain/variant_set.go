package domain

import "strings"

// WeightTotal is the sum every test's variant weights must reach.
const WeightTotal = 100

// VariantSet is the ordered variant list of a test with its control split out.
// It can only be built from a list holding exactly one control.
type VariantSet struct {
	all        []Variant
	control    int
	treatments []int
}

// NewVariantSet checks the single-control invariant and keeps the input order.
func NewVariantSet(variants []Variant) (*VariantSet, error) {
	if len(variants) == 0 {
		return nil, ErrNoVariants
	}

	set := &VariantSet{
		all:     append([]Variant(nil), variants...),
		control: -1,
	}
	controls := 0
	for i, v := range set.all {
		if v.IsControl {
			controls++
			set.control = i
			continue
		}
		set.treatments = append(set.treatments, i)
	}
	if controls != 1 {
		return nil, NewValidationError("Must have exactly one control variant (found %d)", controls)
	}
	return set, nil
}

func (s *VariantSet) Control() Variant { return s.all[s.control] }

func (s *VariantSet) Treatments() []Variant {
	out := make([]Variant, len(s.treatments))
	for i, idx := range s.treatments {
		out[i] = s.all[idx]
	}
	return out
}

// All returns every variant in creation order.
func (s *VariantSet) All() []Variant {
	return append([]Variant(nil), s.all...)
}

func FindVariant(variants []Variant, id string) (Variant, bool) {
	for _, v := range variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// NewVariant is the creation input for one variant.
type NewVariant struct {
	Name          string
	IsControl     bool
	TrafficWeight int
	Overrides     FieldOverrides
}

// NewTest is the creation input for a test and its variants.
type NewTest struct {
	Name              string
	Description       *string
	FormName          string
	FieldName         string
	TrafficAllocation int
	Status            TestStatus
	Variants          []NewVariant
}

// Validate enforces the creation-time invariants. Weights and controls are
// only checked here; nothing edits variants afterwards.
func (n *NewTest) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return NewValidationError("Test name is required")
	}
	if strings.TrimSpace(n.FormName) == "" {
		return NewValidationError("Form name is required")
	}
	if strings.TrimSpace(n.FieldName) == "" {
		return NewValidationError("Field name is required")
	}
	if n.TrafficAllocation < 0 || n.TrafficAllocation > 100 {
		return NewValidationError("Traffic allocation must be between 0 and 100")
	}
	if n.Status != "" && !n.Status.Valid() {
		return NewValidationError("Invalid status %q", n.Status)
	}
	if len(n.Variants) == 0 {
		return NewValidationError("At least one variant is required")
	}

	total := 0
	controls := 0
	for i, v := range n.Variants {
		if strings.TrimSpace(v.Name) == "" {
			return NewValidationError("Variant %d name is required", i+1)
		}
		if v.TrafficWeight < 0 {
			return NewValidationError("Variant %q traffic weight must not be negative", v.Name)
		}
		total += v.TrafficWeight
		if v.IsControl {
			controls++
		}
	}
	if total != WeightTotal {
		return NewValidationError("Traffic weights must sum to %d (got %d)", WeightTotal, total)
	}
	if controls != 1 {
		return NewValidationError("Must have exactly one control variant (found %d)", controls)
	}
	return nil
}
