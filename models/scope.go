package models

// TenantScope is the data visibility of an authenticated caller: either one
// tenant or, for super admins, every tenant. The zero value grants nothing.
type TenantScope struct {
	tenantID int
	all      bool
}

func AllTenants() TenantScope {
	return TenantScope{all: true}
}

func ForTenant(tenantID int) TenantScope {
	return TenantScope{tenantID: tenantID}
}

// IsAll reports whether the scope spans every tenant.
func (s TenantScope) IsAll() bool {
	return s.all
}

// TenantID returns the single tenant of the scope. ok is false for the
// super-admin scope and for the zero value.
func (s TenantScope) TenantID() (id int, ok bool) {
	if s.all || s.tenantID <= 0 {
		return 0, false
	}
	return s.tenantID, true
}

func (s TenantScope) Valid() bool {
	return s.all || s.tenantID > 0
}

// Allows reports whether records of tenantID are visible in the scope.
func (s TenantScope) Allows(tenantID int) bool {
	if s.all {
		return tenantID > 0
	}
	return s.tenantID > 0 && s.tenantID == tenantID
}

// Filter returns the tenant id to filter list queries by, or nil when every
// tenant is visible.
func (s TenantScope) Filter() *int {
	if s.all {
		return nil
	}
	id := s.tenantID
	return &id
}
