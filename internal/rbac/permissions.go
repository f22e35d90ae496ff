package rbac

// Permission is a "resource:action" capability key.
type Permission string

const (
	PermCompaniesCreate Permission = "companies:create"
	PermCompaniesView   Permission = "companies:view"
	PermCompaniesUpdate Permission = "companies:update"
	PermCompaniesDelete Permission = "companies:delete"
	PermCompaniesSearch Permission = "companies:search"

	PermDealsCreate Permission = "deals:create"
	PermDealsView   Permission = "deals:view"
	PermDealsUpdate Permission = "deals:update"
	PermDealsDelete Permission = "deals:delete"

	PermListingsCreate Permission = "listings:create"
	PermListingsView   Permission = "listings:view"
	PermListingsUpdate Permission = "listings:update"
	PermListingsDelete Permission = "listings:delete"

	PermDocumentsCreate Permission = "documents:create"
	PermDocumentsView   Permission = "documents:view"
	PermDocumentsUpdate Permission = "documents:update"
	PermDocumentsDelete Permission = "documents:delete"

	PermNDAsCreate Permission = "ndas:create"
	PermNDAsView   Permission = "ndas:view"
	PermNDAsUpdate Permission = "ndas:update"
	PermNDAsDelete Permission = "ndas:delete"
	PermNDAsSign   Permission = "ndas:sign"

	PermBuyerProfilesCreate Permission = "buyer_profiles:create"
	PermBuyerProfilesView   Permission = "buyer_profiles:view"
	PermBuyerProfilesUpdate Permission = "buyer_profiles:update"
	PermBuyerProfilesDelete Permission = "buyer_profiles:delete"

	PermPaymentsCreate Permission = "payments:create"
	PermPaymentsView   Permission = "payments:view"
	PermPaymentsUpdate Permission = "payments:update"

	PermUsersView   Permission = "users:view"
	PermUsersUpdate Permission = "users:update"
	PermUsersDelete Permission = "users:delete"

	PermAuditView Permission = "audit:view"
)
