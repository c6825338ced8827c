package models

import "errors"

// Custom errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateKey      = errors.New("duplicate key violation")
	ErrUnknownDiscipline = errors.New("unknown discipline")
	ErrEmptyField        = errors.New("race has no starters")
	ErrOutOfSequence     = errors.New("race predates already applied results")
)
