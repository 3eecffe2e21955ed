package models

import "errors"

var (
	ErrInvalidDataType = errors.New("unrecognized data type")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("record not found")
	ErrInvalidMethod   = errors.New("unrecognized analysis method")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)
