package rbac

import (
	"reflect"
	"testing"
)

// The matrix itself is the contract: any grant added or removed must show up
// as a diff in this snapshot.
func TestMatrixSnapshot(t *testing.T) {
	want := map[Role][]Permission{
		RoleVisitor: {
			PermCompaniesSearch,
			PermListingsView,
		},
		RolePartner: {
			PermCompaniesSearch,
			PermCompaniesView,
			PermDealsView,
			PermDocumentsView,
			PermPaymentsView,
		},
		RoleBuyer: {
			PermBuyerProfilesCreate,
			PermBuyerProfilesUpdate,
			PermBuyerProfilesView,
			PermCompaniesSearch,
			PermCompaniesView,
			PermDealsCreate,
			PermDealsUpdate,
			PermDealsView,
			PermDocumentsCreate,
			PermDocumentsView,
			PermListingsView,
			PermNDAsCreate,
			PermNDAsSign,
			PermNDAsView,
			PermPaymentsCreate,
			PermPaymentsView,
		},
		RoleSeller: {
			PermCompaniesCreate,
			PermCompaniesDelete,
			PermCompaniesSearch,
			PermCompaniesUpdate,
			PermCompaniesView,
			PermDealsUpdate,
			PermDealsView,
			PermDocumentsCreate,
			PermDocumentsDelete,
			PermDocumentsUpdate,
			PermDocumentsView,
			PermListingsCreate,
			PermListingsDelete,
			PermListingsUpdate,
			PermListingsView,
			PermNDAsCreate,
			PermNDAsSign,
			PermNDAsView,
		},
		RoleBroker: {
			PermBuyerProfilesView,
			PermCompaniesCreate,
			PermCompaniesSearch,
			PermCompaniesUpdate,
			PermCompaniesView,
			PermDealsCreate,
			PermDealsDelete,
			PermDealsUpdate,
			PermDealsView,
			PermDocumentsCreate,
			PermDocumentsDelete,
			PermDocumentsUpdate,
			PermDocumentsView,
			PermListingsCreate,
			PermListingsDelete,
			PermListingsUpdate,
			PermListingsView,
			PermNDAsCreate,
			PermNDAsSign,
			PermNDAsUpdate,
			PermNDAsView,
			PermPaymentsUpdate,
			PermPaymentsView,
			PermUsersView,
		},
		RoleAdmin: {
			PermAuditView,
			PermBuyerProfilesCreate,
			PermBuyerProfilesDelete,
			PermBuyerProfilesUpdate,
			PermBuyerProfilesView,
			PermCompaniesCreate,
			PermCompaniesDelete,
			PermCompaniesSearch,
			PermCompaniesUpdate,
			PermCompaniesView,
			PermDealsCreate,
			PermDealsDelete,
			PermDealsUpdate,
			PermDealsView,
			PermDocumentsCreate,
			PermDocumentsDelete,
			PermDocumentsUpdate,
			PermDocumentsView,
			PermListingsCreate,
			PermListingsDelete,
			PermListingsUpdate,
			PermListingsView,
			PermNDAsCreate,
			PermNDAsDelete,
			PermNDAsSign,
			PermNDAsUpdate,
			PermNDAsView,
			PermPaymentsCreate,
			PermPaymentsUpdate,
			PermPaymentsView,
			PermUsersDelete,
			PermUsersUpdate,
			PermUsersView,
		},
	}

	if len(rolePermissions) != len(want) {
		t.Fatalf("matrix covers %d roles, snapshot covers %d", len(rolePermissions), len(want))
	}
	for role, perms := range want {
		got := RolePermissions(role)
		if !reflect.DeepEqual(got, perms) {
			t.Errorf("role %s: permissions diverged from snapshot\n got: %v\nwant: %v", role, got, perms)
		}
	}
}

func TestUnknownRoleFailsClosed(t *testing.T) {
	for _, role := range []Role{"", "superuser", "ADMIN", "analyst", "robert'); drop table users;--"} {
		if Has(role, PermCompaniesView) {
			t.Errorf("role %q unexpectedly holds %s", role, PermCompaniesView)
		}
		if perms := RolePermissions(role); perms != nil {
			t.Errorf("role %q unexpectedly has permission list %v", role, perms)
		}
		if res := AccessibleResources(role); res != nil {
			t.Errorf("role %q unexpectedly reaches resources %v", role, res)
		}
	}
}

func TestAnalystIsAssignableButGrantless(t *testing.T) {
	if !Assignable(RoleAnalyst) {
		t.Fatal("analyst must remain assignable")
	}
	if KnownRole(RoleAnalyst) {
		t.Fatal("analyst must not appear in the permission matrix")
	}
	for _, p := range RolePermissions(RoleAdmin) {
		if Has(RoleAnalyst, p) {
			t.Fatalf("analyst unexpectedly holds %s", p)
		}
	}
}

// No role's grants are computed from another role's list: dropping admin from
// the matrix must leave every other role's permission set untouched.
func TestNoImplicitInheritance(t *testing.T) {
	before := make(map[Role][]Permission)
	for _, role := range AssignableRoles() {
		if role == RoleAdmin {
			continue
		}
		before[role] = RolePermissions(role)
	}

	adminPerms := rolePermissions[RoleAdmin]
	delete(rolePermissions, RoleAdmin)
	defer func() { rolePermissions[RoleAdmin] = adminPerms }()

	for role, want := range before {
		if got := RolePermissions(role); !reflect.DeepEqual(got, want) {
			t.Errorf("role %s changed when admin row was removed:\n got: %v\nwant: %v", role, got, want)
		}
	}
}

func TestHasAnyHasAll(t *testing.T) {
	if !HasAny(RoleBuyer, PermCompaniesCreate, PermNDAsSign) {
		t.Fatal("buyer should match at least ndas:sign")
	}
	if HasAny(RoleVisitor, PermCompaniesCreate, PermDealsCreate) {
		t.Fatal("visitor matched mutating permissions")
	}
	if !HasAll(RoleSeller, PermCompaniesCreate, PermCompaniesUpdate) {
		t.Fatal("seller should hold both company mutations")
	}
	if HasAll(RoleSeller, PermCompaniesCreate, PermAuditView) {
		t.Fatal("seller must not hold audit:view")
	}
	if !HasAll(RoleVisitor) {
		t.Fatal("empty permission list must be trivially satisfied")
	}
}

func TestDerivedViews(t *testing.T) {
	res := AccessibleResources(RoleVisitor)
	want := []string{"companies", "listings"}
	if !reflect.DeepEqual(res, want) {
		t.Fatalf("visitor resources = %v, want %v", res, want)
	}

	actions := AllowedActions(RoleBuyer, "ndas")
	wantActions := []string{"create", "sign", "view"}
	if !reflect.DeepEqual(actions, wantActions) {
		t.Fatalf("buyer nda actions = %v, want %v", actions, wantActions)
	}

	if got := AllowedActions(RoleVisitor, "payments"); got != nil {
		t.Fatalf("visitor payment actions = %v, want none", got)
	}
}

// Lookups are pure: repeated calls with identical input agree, and mutating a
// returned slice must not leak back into the table.
func TestLookupsArePure(t *testing.T) {
	first := RolePermissions(RoleSeller)
	second := RolePermissions(RoleSeller)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated RolePermissions calls disagree")
	}
	first[0] = Permission("tampered:entry")
	third := RolePermissions(RoleSeller)
	if !reflect.DeepEqual(second, third) {
		t.Fatal("mutating a returned slice leaked into the table")
	}
	for i := 0; i < 3; i++ {
		if !Has(RoleSeller, PermCompaniesCreate) {
			t.Fatal("Has became non-deterministic")
		}
	}
}

func TestSpecScenarios(t *testing.T) {
	if Has(RoleBuyer, PermCompaniesCreate) {
		t.Fatal("buyer must not create companies")
	}
	if !Has(RoleSeller, PermCompaniesCreate) {
		t.Fatal("seller must create companies")
	}
}
