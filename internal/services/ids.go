package services

import "github.com/oklog/ulid/v2"

// NewID returns a new sortable unique id
func NewID() string {
	return ulid.Make().String()
}
