// Package access centralises who may change which staff account and which
// class registers a staff member may see.
package access

import "attendance-service/internal/models"

// IsProtected reports whether account is the seed administrator, which can
// never be deleted, deactivated or demoted.
func IsProtected(account models.Account) bool {
	return account.ID == models.SeedAdminID
}

// CanModify reports whether actor may edit target. The protected admin may
// edit anyone; other admins may edit teachers and themselves; teachers only
// themselves.
func CanModify(actor, target models.Account) bool {
	if IsProtected(actor) {
		return true
	}
	if actor.ID == target.ID {
		return true
	}

	switch actor.Role {
	case models.RoleAdmin:
		return target.Role == models.RoleTeacher && !IsProtected(target)
	default:
		return false
	}
}

func CanDelete(actor, target models.Account) bool {
	if IsProtected(target) || actor.ID == target.ID {
		return false
	}

	return CanModify(actor, target)
}

// CanToggleActive mirrors CanDelete: nobody may switch off their own
// account or the protected one.
func CanToggleActive(actor, target models.Account) bool {
	if IsProtected(target) || actor.ID == target.ID {
		return false
	}

	return CanModify(actor, target)
}

// EffectiveRole is the role a save by actor may give target, where
// target.Role is the stored role (empty for a new account). The protected
// account stays admin; only the protected admin may change a role; an
// omitted role keeps the stored one; new accounts default to teacher.
func EffectiveRole(actor, target models.Account, requested models.Role) models.Role {
	if IsProtected(target) {
		return models.RoleAdmin
	}
	if IsProtected(actor) && requested.Valid() {
		return requested
	}
	if (requested == "" || actor.ID == target.ID) && target.Role.Valid() {
		return target.Role
	}

	return models.RoleTeacher
}

// CanAccessSection reports whether actor may read or mark sec's register.
func CanAccessSection(actor models.Account, sec models.Section) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleTeacher:
		assigned, ok := actor.AssignedSection()
		return ok && assigned == sec
	default:
		return false
	}
}
