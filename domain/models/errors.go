package models

import "errors"

var (
	// ErrEmptyDataset means there is no record to classify; the catalog is empty
	// and no chart can render.
	ErrEmptyDataset = errors.New("dataset has no records")

	ErrUnknownField = errors.New("unknown field")

	// ErrKindMismatch is returned when a field of one kind is bound to a channel
	// that requires the other kind.
	ErrKindMismatch = errors.New("field kind does not match channel")

	ErrInsufficientBinding = errors.New("binding is insufficient for chart type")

	// ErrNonNumericMeasure is returned when a row holds a non-numeric or missing
	// value in the measure column.
	ErrNonNumericMeasure = errors.New("measure value is not numeric")

	ErrUnknownChannel   = errors.New("unknown channel")
	ErrUnknownChartType = errors.New("unknown chart type")
)
