package types

import "fmt"

// ColumnNotFoundError reports a descriptor or fixture referencing a column
// the relation does not declare. This is a programmer error (fixture and
// descriptor out of sync) and is never swallowed: evaluators return it
// immediately instead of producing an empty result.
type ColumnNotFoundError struct {
	Relation string
	Column   string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %s does not exist in relation %s", e.Column, e.Relation)
}

// UnknownDescriptorKindError reports a descriptor whose kind is not one of
// the recognized operations. Like ColumnNotFoundError it marks a
// misconfiguration, not a runtime condition.
type UnknownDescriptorKindError struct {
	Descriptor string
	Kind       string
}

func (e *UnknownDescriptorKindError) Error() string {
	return fmt.Sprintf("unknown %s descriptor kind: %s", e.Descriptor, e.Kind)
}

// InvalidDescriptorError reports a structurally misconfigured descriptor,
// e.g. a cumulative window aggregate with no ordering column.
type InvalidDescriptorError struct {
	Descriptor string
	Reason     string
}

func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid %s descriptor: %s", e.Descriptor, e.Reason)
}
