package auth

import "github.com/taskflow/taskflow-api/internal/models"

// PrincipalKind discriminates what backs an acting identity.
type PrincipalKind string

const (
	PrincipalUser    PrincipalKind = "user"
	PrincipalCompany PrincipalKind = "company"
)

// Principal is the resolved identity behind a request. Exactly one of User or
// Company is set: User for stored accounts, Company for identities synthesized
// from a company's own credentials. A company principal has no user row and no
// numeric user id of its own.
type Principal struct {
	Kind    PrincipalKind
	User    *models.User
	Company *models.Company
}

// RealUserPrincipal wraps a stored user row.
func RealUserPrincipal(u *models.User) Principal {
	return Principal{Kind: PrincipalUser, User: u}
}

// VirtualCompanyPrincipal synthesizes a principal from a company row. The
// synthesis is idempotent: the same company row always yields a principal with
// the same role and tenant scope.
func VirtualCompanyPrincipal(c *models.Company) Principal {
	return Principal{Kind: PrincipalCompany, Company: c}
}

// Subject returns the token subject for this principal.
func (p Principal) Subject() Subject {
	if p.Kind == PrincipalCompany {
		return Subject{ID: p.Company.ID, Kind: PrincipalCompany}
	}
	return Subject{ID: p.User.ID, Kind: PrincipalUser}
}

// Role returns the authorization tier the principal acts under.
func (p Principal) Role() models.UserRole {
	if p.Kind == PrincipalCompany {
		return models.RoleCompany
	}
	return p.User.Role
}

// IsSuperAdmin reports whether the principal is the platform super-admin.
func (p Principal) IsSuperAdmin() bool {
	return p.Kind == PrincipalUser && p.User.Role == models.RoleSuperAdmin
}

// CompanyID returns the tenant the principal is scoped to. The super-admin
// (and any user without a company) has no tenant and returns false.
func (p Principal) CompanyID() (uint64, bool) {
	if p.Kind == PrincipalCompany {
		return p.Company.ID, true
	}
	if p.User.CompanyID != nil {
		return *p.User.CompanyID, true
	}
	return 0, false
}

// SameTenant reports whether the principal belongs to the given company.
func (p Principal) SameTenant(companyID uint64) bool {
	id, ok := p.CompanyID()
	return ok && id == companyID
}

// RealUserID returns the backing user row id, if any. Company principals have
// none; fields that require a real user id go through attribution instead.
func (p Principal) RealUserID() (uint64, bool) {
	if p.Kind == PrincipalUser {
		return p.User.ID, true
	}
	return 0, false
}

// CanAssignTasks reports whether the principal may create tasks. The flag is
// only consulted for USER-tier actors; every other tier may assign.
func (p Principal) CanAssignTasks() bool {
	if p.Kind == PrincipalCompany {
		return true
	}
	if p.User.Role == models.RoleUser {
		return p.User.CanAssignTasks
	}
	return true
}

// DisplayName returns a human-readable name for audit logs and notifications.
func (p Principal) DisplayName() string {
	if p.Kind == PrincipalCompany {
		return p.Company.Username
	}
	return p.User.Username
}
