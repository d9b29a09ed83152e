// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package uniform

import (
	"errors"
	"fmt"
)

// Layout errors.
var (
	// ErrEmptySchema is returned when a schema has no fields.
	ErrEmptySchema = errors.New("uniform: schema has no fields")

	// ErrDuplicateField is returned when two schema fields share a name.
	ErrDuplicateField = errors.New("uniform: duplicate field name")

	// ErrInvalidType is returned for a type outside the closed type set.
	ErrInvalidType = errors.New("uniform: invalid field type")
)

// Write validation errors.
var (
	// ErrUnknownField is returned when a name or index does not exist in the layout.
	ErrUnknownField = errors.New("uniform: unknown field")

	// ErrTypeMismatch is returned when a value cannot be stored in the field's type.
	ErrTypeMismatch = errors.New("uniform: value does not match field type")

	// ErrComponentCount is returned when a vector or matrix value has the wrong length.
	ErrComponentCount = errors.New("uniform: wrong number of components")

	// ErrNotInteger is returned when a non-integral value is written to an int or uint field.
	ErrNotInteger = errors.New("uniform: value is not an integer")

	// ErrNegative is returned when a negative value is written to a uint field.
	ErrNegative = errors.New("uniform: negative value for unsigned field")

	// ErrOutOfRange is returned when an integer does not fit in 32 bits.
	ErrOutOfRange = errors.New("uniform: value out of 32-bit range")
)

// FieldError reports a failed write to a named field.
type FieldError struct {
	Field string
	Type  Type
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: field %q (%s)", e.Err, e.Field, e.Type)
}

func (e *FieldError) Unwrap() error { return e.Err }
