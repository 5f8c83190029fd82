// Package permission answers "can this actor perform this action on
// this target". It is pure: the session is passed in explicitly, never
// looked up from ambient state.
package permission

import "github.com/clubbook/members-book-go/internal/domain"

// Permission is the set of user types allowed to perform an action.
type Permission []domain.UserType

// Named permission sets.
var (
	// Admin only
	ManageMembers  = Permission{domain.UserTypeAdmin}
	DeleteMembers  = Permission{domain.UserTypeAdmin}
	EditAnyProfile = Permission{domain.UserTypeAdmin}

	// Members and admins
	SendMessages    = Permission{domain.UserTypeAdmin, domain.UserTypeMember}
	ViewContactInfo = Permission{domain.UserTypeAdmin, domain.UserTypeMember}
	EditOwnProfile  = Permission{domain.UserTypeAdmin, domain.UserTypeMember}

	// Everyone, guests included (read-only)
	ViewProfiles = Permission{domain.UserTypeAdmin, domain.UserTypeMember, domain.UserTypeGuest}
	ViewSectors  = Permission{domain.UserTypeAdmin, domain.UserTypeMember, domain.UserTypeGuest}
)

// HierarchyLevels is the total order over membership tiers. Higher rank
// may contact lower.
var HierarchyLevels = map[domain.MemberHierarchy]int{
	domain.HierarchySocios:     3,
	domain.HierarchyInfinity:   2,
	domain.HierarchyDisruption: 1,
}

// HasPermission reports whether userType belongs to the permission set.
// An empty/unknown actor never has permission.
func HasPermission(userType domain.UserType, perm Permission) bool {
	if userType == "" {
		return false
	}
	for _, t := range perm {
		if t == userType {
			return true
		}
	}
	return false
}

// CanContactMember decides contact eligibility between an actor and a
// directory member.
//
// Guests can't contact anyone. Admins can contact anyone. Members can
// contact members of same or lower hierarchy; a member with no tier
// assigned can contact no one, and a target outside the known tiers is
// never reachable.
func CanContactMember(userType domain.UserType, userHierarchy, targetHierarchy domain.MemberHierarchy) bool {
	if userType == domain.UserTypeGuest {
		return false
	}
	if userType == domain.UserTypeAdmin {
		return true
	}
	if userType == domain.UserTypeMember && userHierarchy != "" {
		targetRank, known := HierarchyLevels[targetHierarchy]
		if !known {
			return false
		}
		return HierarchyLevels[userHierarchy] >= targetRank
	}
	return false
}
