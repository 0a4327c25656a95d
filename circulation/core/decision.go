package core

// Decision represents the outcome of a business decision in a Decide function.
//
// Decision should only be constructed using SuccessDecision or RejectedDecision.
type Decision[T any] struct {
	value     T
	violation *PolicyViolation
}

// SuccessDecision creates a Decision that allows the operation and carries the state change to persist.
func SuccessDecision[T any](value T) Decision[T] {
	return Decision[T]{value: value}
}

// RejectedDecision creates a Decision that rejects the operation because of a business rule.
func RejectedDecision[T any](violation PolicyViolation) Decision[T] {
	return Decision[T]{violation: &violation}
}

// IsSuccess reports whether the operation is allowed.
func (d Decision[T]) IsSuccess() bool {
	return d.violation == nil
}

// Value returns the state change of a successful decision, or the zero value.
func (d Decision[T]) Value() T {
	return d.value
}

// HasError returns the PolicyViolation of a rejected decision, otherwise nil.
func (d Decision[T]) HasError() error {
	if d.violation == nil {
		return nil
	}

	return *d.violation
}
