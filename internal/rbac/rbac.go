// Package rbac holds the static role-to-permission matrix and pure lookup
// helpers over it. The matrix is authored by hand, frozen at compile time,
// and every lookup fails closed: an unknown role holds nothing.
package rbac

import (
	"sort"
	"strings"
)

// Role is the capability class assigned to a user profile. A user holds
// exactly one role at a time; there is no inheritance between roles. The
// admin list is a hand-maintained superset, not a computed union.
type Role string

const (
	RoleVisitor Role = "visitor"
	RoleBuyer   Role = "buyer"
	RoleSeller  Role = "seller"
	RoleBroker  Role = "broker"
	RolePartner Role = "partner"
	RoleAnalyst Role = "analyst"
	RoleAdmin   Role = "admin"
)

// rolePermissions is the single source of truth for what each role may do.
// RoleAnalyst is deliberately absent: the role is assignable but carries no
// grants until product defines its capability set.
var rolePermissions = map[Role][]Permission{
	RoleVisitor: {
		PermListingsView,
		PermCompaniesSearch,
	},
	RoleBuyer: {
		PermCompaniesView,
		PermCompaniesSearch,
		PermListingsView,
		PermDealsCreate,
		PermDealsView,
		PermDealsUpdate,
		PermDocumentsCreate,
		PermDocumentsView,
		PermNDAsCreate,
		PermNDAsView,
		PermNDAsSign,
		PermBuyerProfilesCreate,
		PermBuyerProfilesView,
		PermBuyerProfilesUpdate,
		PermPaymentsCreate,
		PermPaymentsView,
	},
	RoleSeller: {
		PermCompaniesCreate,
		PermCompaniesView,
		PermCompaniesUpdate,
		PermCompaniesDelete,
		PermCompaniesSearch,
		PermListingsCreate,
		PermListingsView,
		PermListingsUpdate,
		PermListingsDelete,
		PermDealsView,
		PermDealsUpdate,
		PermDocumentsCreate,
		PermDocumentsView,
		PermDocumentsUpdate,
		PermDocumentsDelete,
		PermNDAsCreate,
		PermNDAsView,
		PermNDAsSign,
	},
	RoleBroker: {
		PermCompaniesCreate,
		PermCompaniesView,
		PermCompaniesUpdate,
		PermCompaniesSearch,
		PermListingsCreate,
		PermListingsView,
		PermListingsUpdate,
		PermListingsDelete,
		PermDealsCreate,
		PermDealsView,
		PermDealsUpdate,
		PermDealsDelete,
		PermDocumentsCreate,
		PermDocumentsView,
		PermDocumentsUpdate,
		PermDocumentsDelete,
		PermNDAsCreate,
		PermNDAsView,
		PermNDAsUpdate,
		PermNDAsSign,
		PermBuyerProfilesView,
		PermPaymentsView,
		PermPaymentsUpdate,
		PermUsersView,
	},
	RolePartner: {
		PermCompaniesView,
		PermCompaniesSearch,
		PermDealsView,
		PermDocumentsView,
		PermPaymentsView,
	},
	RoleAdmin: {
		PermCompaniesCreate,
		PermCompaniesView,
		PermCompaniesUpdate,
		PermCompaniesDelete,
		PermCompaniesSearch,
		PermDealsCreate,
		PermDealsView,
		PermDealsUpdate,
		PermDealsDelete,
		PermListingsCreate,
		PermListingsView,
		PermListingsUpdate,
		PermListingsDelete,
		PermDocumentsCreate,
		PermDocumentsView,
		PermDocumentsUpdate,
		PermDocumentsDelete,
		PermNDAsCreate,
		PermNDAsView,
		PermNDAsUpdate,
		PermNDAsDelete,
		PermNDAsSign,
		PermBuyerProfilesCreate,
		PermBuyerProfilesView,
		PermBuyerProfilesUpdate,
		PermBuyerProfilesDelete,
		PermPaymentsCreate,
		PermPaymentsView,
		PermPaymentsUpdate,
		PermUsersView,
		PermUsersUpdate,
		PermUsersDelete,
		PermAuditView,
	},
}

// roleIndex is derived from rolePermissions once at package init for O(1)
// membership checks.
var roleIndex = func() map[Role]map[Permission]struct{} {
	idx := make(map[Role]map[Permission]struct{}, len(rolePermissions))
	for role, perms := range rolePermissions {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		idx[role] = set
	}
	return idx
}()

// Has reports whether role holds perm. Unknown roles hold nothing.
func Has(role Role, perm Permission) bool {
	set, ok := roleIndex[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// HasAny reports whether role holds at least one of perms.
func HasAny(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if Has(role, p) {
			return true
		}
	}
	return false
}

// HasAll reports whether role holds every one of perms. An empty list is
// trivially satisfied.
func HasAll(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if !Has(role, p) {
			return false
		}
	}
	return true
}

// RolePermissions returns a sorted copy of the permissions granted to role.
func RolePermissions(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AccessibleResources returns the sorted set of resource names role may act
// on in any capacity.
func AccessibleResources(role Role) []string {
	seen := make(map[string]struct{})
	for _, p := range rolePermissions[role] {
		resource, _, ok := split(p)
		if !ok {
			continue
		}
		seen[resource] = struct{}{}
	}
	return sortedKeys(seen)
}

// AllowedActions returns the sorted actions role may perform on resource.
func AllowedActions(role Role, resource string) []string {
	seen := make(map[string]struct{})
	for _, p := range rolePermissions[role] {
		res, action, ok := split(p)
		if !ok || res != resource {
			continue
		}
		seen[action] = struct{}{}
	}
	return sortedKeys(seen)
}

// KnownRole reports whether role appears in the permission matrix. RoleAnalyst
// is a named role without grants, so it is not "known" here; callers
// validating profile rows should use AssignableRoles instead.
func KnownRole(role Role) bool {
	_, ok := rolePermissions[role]
	return ok
}

// AssignableRoles lists every role a profile may carry, including the
// grant-less analyst role.
func AssignableRoles() []Role {
	return []Role{RoleVisitor, RoleBuyer, RoleSeller, RoleBroker, RolePartner, RoleAnalyst, RoleAdmin}
}

// Assignable reports whether role may be stored on a user profile.
func Assignable(role Role) bool {
	for _, r := range AssignableRoles() {
		if r == role {
			return true
		}
	}
	return false
}

func split(p Permission) (resource, action string, ok bool) {
	parts := strings.SplitN(string(p), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
