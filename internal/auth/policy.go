package auth

import (
	"errors"
	"log/slog"

	"github.com/taskflow/taskflow-api/internal/models"
)

var (
	ErrPermissionDenied     = errors.New("permission denied")
	ErrCrossTenantViolation = errors.New("operation crosses company boundaries")
)

// Action names an operation submitted to the policy.
type Action string

const (
	ActionCompanyCreate     Action = "company.create"
	ActionCompanyRead       Action = "company.read"
	ActionCompanyUpdate     Action = "company.update"
	ActionCompanyDeactivate Action = "company.deactivate"

	ActionUserCreate     Action = "user.create"
	ActionUserRead       Action = "user.read"
	ActionUserUpdate     Action = "user.update"
	ActionUserDeactivate Action = "user.deactivate"
	ActionUserActivate   Action = "user.activate"

	ActionTaskCreate       Action = "task.create"
	ActionTaskRead         Action = "task.read"
	ActionTaskUpdate       Action = "task.update"
	ActionTaskUpdateStatus Action = "task.update_status"
	ActionTaskDelete       Action = "task.delete"
)

// TargetKind names the resource kind a decision is about.
type TargetKind string

const (
	TargetCompany TargetKind = "company"
	TargetUser    TargetKind = "user"
	TargetTask    TargetKind = "task"
)

// Target describes the resource an action is aimed at. CompanyID is the tenant
// the target belongs to (nil for tenantless targets such as the super-admin
// row or a company being created). For user targets, Role is the stored role
// and RequestedRole the role an update or create is asking for. For task
// targets, AssigneeID and CreatorID carry the task's real user references.
type Target struct {
	Kind          TargetKind
	ID            uint64
	CompanyID     *uint64
	Role          models.UserRole
	RequestedRole *models.UserRole
	AssigneeID    uint64
	CreatorID     uint64
}

// CompanyTarget builds a target from a company row.
func CompanyTarget(c *models.Company) Target {
	id := c.ID
	return Target{Kind: TargetCompany, ID: c.ID, CompanyID: &id}
}

// UserTarget builds a target from a user row.
func UserTarget(u *models.User) Target {
	return Target{Kind: TargetUser, ID: u.ID, CompanyID: u.CompanyID, Role: u.Role}
}

// TaskTarget builds a target from a task row.
func TaskTarget(t *models.Task) Target {
	companyID := t.CompanyID
	return Target{
		Kind:       TargetTask,
		ID:         t.ID,
		CompanyID:  &companyID,
		AssigneeID: t.AssigneeID,
		CreatorID:  t.CreatorID,
	}
}

// Decision is the outcome of a policy evaluation. Reason is for audit logs;
// callers surface Err, which is one of the package sentinels.
type Decision struct {
	Allowed bool
	Reason  string
	Err     error
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason, Err: ErrPermissionDenied}
}

func denyCrossTenant() Decision {
	return Decision{Reason: "target belongs to another company", Err: ErrCrossTenantViolation}
}

// Policy decides whether a principal may perform an action on a target. It is
// a pure function of its inputs; every decision is written to the audit log.
type Policy struct {
	// companyRoleCeiling is the highest role a company principal may grant.
	companyRoleCeiling models.UserRole
	logger             *slog.Logger
}

func NewPolicy(logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{
		companyRoleCeiling: models.RoleAdmin,
		logger:             logger,
	}
}

var roleRank = map[models.UserRole]int{
	models.RoleUser:       1,
	models.RoleAdmin:      2,
	models.RoleSuperAdmin: 3,
}

// Decide evaluates the permission matrix for one (actor, action, target)
// triple and logs the outcome.
func (p *Policy) Decide(actor Principal, action Action, target Target) Decision {
	d := p.decide(actor, action, target)

	p.logger.Info("authorization decision",
		"actor", actor.DisplayName(),
		"actor_role", actor.Role(),
		"action", action,
		"target_kind", target.Kind,
		"target_id", target.ID,
		"allowed", d.Allowed,
		"reason", d.Reason,
	)
	return d
}

func (p *Policy) decide(actor Principal, action Action, target Target) Decision {
	// Cross-tenant denial is unconditional for everyone but the super-admin,
	// regardless of the specific action.
	if !actor.IsSuperAdmin() && target.CompanyID != nil && !actor.SameTenant(*target.CompanyID) {
		return denyCrossTenant()
	}

	switch action {
	case ActionCompanyCreate, ActionCompanyDeactivate:
		if actor.IsSuperAdmin() {
			return allow()
		}
		return deny("reserved for the super-admin")

	case ActionCompanyRead:
		if actor.IsSuperAdmin() || target.CompanyID != nil && actor.SameTenant(*target.CompanyID) {
			return allow()
		}
		return deny("company not visible to actor")

	case ActionCompanyUpdate:
		if actor.IsSuperAdmin() {
			return allow()
		}
		if actor.Kind == PrincipalCompany {
			return allow() // own company; cross-tenant already ruled out
		}
		return deny("only the company itself or the super-admin may update a company")

	case ActionUserCreate:
		return p.decideUserCreate(actor, target)

	case ActionUserRead:
		return p.decideUserRead(actor, target)

	case ActionUserUpdate:
		return p.decideUserUpdate(actor, target)

	case ActionUserDeactivate, ActionUserActivate:
		return p.decideUserLifecycle(actor, action, target)

	case ActionTaskCreate:
		if actor.CanAssignTasks() {
			return allow()
		}
		return deny("actor lacks the task assignment capability")

	case ActionTaskRead:
		return p.decideTaskRead(actor, target)

	case ActionTaskUpdate:
		return p.decideTaskUpdate(actor, target)

	case ActionTaskUpdateStatus:
		if actor.IsSuperAdmin() {
			return allow()
		}
		if id, ok := actor.RealUserID(); ok && id == target.AssigneeID {
			return allow()
		}
		return deny("only the assignee may change a task's status")

	case ActionTaskDelete:
		switch actor.Role() {
		case models.RoleSuperAdmin, models.RoleCompany, models.RoleAdmin:
			return allow()
		}
		return deny("task deletion requires admin privileges")
	}

	return deny("unknown action")
}

func (p *Policy) decideUserCreate(actor Principal, target Target) Decision {
	requested := target.Role
	if target.RequestedRole != nil {
		requested = *target.RequestedRole
	}
	if requested == models.RoleSuperAdmin {
		return deny("super-admin accounts cannot be created through the API")
	}

	switch actor.Role() {
	case models.RoleSuperAdmin:
		if requested != models.RoleAdmin {
			return deny("the super-admin only provisions admin accounts")
		}
		return allow()
	case models.RoleCompany:
		if roleRank[requested] > roleRank[p.companyRoleCeiling] {
			return deny("requested role exceeds the company principal's ceiling")
		}
		return allow()
	case models.RoleAdmin:
		if requested != models.RoleUser {
			return deny("admins only create user-tier accounts")
		}
		return allow()
	}
	return deny("actor may not create accounts")
}

func (p *Policy) decideUserRead(actor Principal, target Target) Decision {
	switch actor.Role() {
	case models.RoleSuperAdmin, models.RoleCompany, models.RoleAdmin:
		return allow() // tenant scope already enforced above
	}
	if id, ok := actor.RealUserID(); ok && id == target.ID {
		return allow()
	}
	return deny("users may only read their own profile")
}

func (p *Policy) decideUserUpdate(actor Principal, target Target) Decision {
	actorID, isRealUser := actor.RealUserID()
	isSelf := isRealUser && actorID == target.ID

	// Nobody is elevated to super-admin, and the super-admin cannot demote
	// their own account.
	if target.RequestedRole != nil && *target.RequestedRole != target.Role {
		if *target.RequestedRole == models.RoleSuperAdmin {
			return deny("elevation to super-admin is not permitted")
		}
		if isSelf && actor.IsSuperAdmin() {
			return deny("the super-admin cannot demote their own account")
		}
	}

	if target.Role == models.RoleSuperAdmin && !isSelf {
		return deny("the super-admin account is not managed by other actors")
	}

	switch actor.Role() {
	case models.RoleSuperAdmin:
		return allow()
	case models.RoleCompany:
		if target.RequestedRole != nil && roleRank[*target.RequestedRole] > roleRank[p.companyRoleCeiling] {
			return deny("requested role exceeds the company principal's ceiling")
		}
		return allow()
	case models.RoleAdmin:
		if isSelf {
			return allow()
		}
		if target.Role != models.RoleUser {
			return deny("admins only manage user-tier accounts")
		}
		if target.RequestedRole != nil && *target.RequestedRole != models.RoleUser {
			return deny("admins cannot promote accounts")
		}
		return allow()
	}
	if isSelf {
		return allow() // field narrowing applies, see AllowedUserUpdateFields
	}
	return deny("users may only update their own profile")
}

func (p *Policy) decideUserLifecycle(actor Principal, action Action, target Target) Decision {
	if id, ok := actor.RealUserID(); ok && id == target.ID {
		return deny("actors may not deactivate or reactivate their own account")
	}
	if target.Role == models.RoleSuperAdmin {
		return deny("the super-admin account cannot be deactivated")
	}

	switch actor.Role() {
	case models.RoleSuperAdmin:
		return allow()
	case models.RoleCompany:
		if roleRank[target.Role] > roleRank[p.companyRoleCeiling] {
			return deny("target role exceeds the company principal's ceiling")
		}
		return allow()
	case models.RoleAdmin:
		if target.Role != models.RoleUser {
			return deny("admins only manage user-tier accounts")
		}
		return allow()
	}
	return deny("actor may not change account state")
}

func (p *Policy) decideTaskRead(actor Principal, target Target) Decision {
	switch actor.Role() {
	case models.RoleSuperAdmin, models.RoleCompany, models.RoleAdmin:
		return allow()
	}
	if id, ok := actor.RealUserID(); ok && (id == target.AssigneeID || id == target.CreatorID) {
		return allow()
	}
	return deny("users only see tasks they are assigned to or created")
}

func (p *Policy) decideTaskUpdate(actor Principal, target Target) Decision {
	switch actor.Role() {
	case models.RoleSuperAdmin, models.RoleCompany, models.RoleAdmin:
		return allow()
	}
	if id, ok := actor.RealUserID(); ok && id == target.CreatorID {
		return allow()
	}
	return deny("only the creator or an admin may update a task")
}

// selfServiceFields is the allow-list a USER-tier actor may write on their own
// profile. Everything else in the payload is silently ignored, not rejected.
var selfServiceFields = []string{"email", "username", "password"}

// AllowedUserUpdateFields returns the writable field set for a profile update.
// A nil slice means the actor is unrestricted.
func (p *Policy) AllowedUserUpdateFields(actor Principal, targetUserID uint64) []string {
	switch actor.Role() {
	case models.RoleSuperAdmin, models.RoleCompany, models.RoleAdmin:
		return nil
	}
	return selfServiceFields
}
