// Package access holds the role-based visibility rules that gate every owned
// entity in the system. Parents administer everything; children see their own
// records plus shared ones. Worship plans, templates, and logs carry no owner
// and are not gated here.
package access

import "github.com/calebwray/theotime/internal/auth"

// Decision is the outcome of an access check.
type Decision struct {
	Read  bool
	Write bool
}

// CanAccess decides read/write eligibility for a principal against an entity
// with the given owner. A nil owner means the entity is shared with the whole
// family: readable by anyone, writable only by parents.
//
// Callers translate a denied write into a forbidden response. For denied
// reads the policy is: single-resource fetches return forbidden, listing
// queries filter silently (see the store list methods).
func CanAccess(p auth.Principal, ownerID *int64) Decision {
	if p.IsParent() {
		return Decision{Read: true, Write: true}
	}
	if ownerID == nil {
		return Decision{Read: true, Write: false}
	}
	owned := *ownerID == p.UserID
	return Decision{Read: owned, Write: owned}
}
