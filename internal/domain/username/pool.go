package username

import (
	"fmt"
	"time"
)

// Unit is one allocatable username in the pool. AssignedTo is empty while the
// unit is unassigned; once set it never reverts and never changes to another
// principal (the claim transaction enforces this, not the pool itself).
type Unit struct {
	Name       string     `json:"name"`
	AssignedTo string     `json:"assignedTo,omitempty"`
	AssignedAt *time.Time `json:"assignedAt,omitempty"`
}

// Assigned reports whether the unit is bound to a principal
func (u *Unit) Assigned() bool {
	return u.AssignedTo != ""
}

// unitKey returns the store key for a pool unit
func unitKey(name string) string {
	return fmt.Sprintf("username:%s", name)
}

// unassignedSetKey indexes the names of unassigned units. The index is only
// mutated inside the same transactions that mutate unit documents.
const unassignedSetKey = "usernames:unassigned"
