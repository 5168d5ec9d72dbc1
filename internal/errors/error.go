// Package errors provides custom error types for shop operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrCapacityExceeded = errors.New("product capacity exceeded")
var ErrInsufficientStock = errors.New("insufficient stock")
var ErrInvalidInput = errors.New("invalid input")
var ErrIOFailure = errors.New("i/o failure")
