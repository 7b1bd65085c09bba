// Package store persists the classification rule catalogue.
package store

import "errors"

// ErrEmptyCatalogue is returned by sources that produced no rules.
var ErrEmptyCatalogue = errors.New("rule catalogue is empty")
