// Package group models the ACL grouping a Person may belong to.
package group

import "time"

// Group is a named collection persons can be assigned to for access control.
type Group struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
