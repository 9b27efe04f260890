package issue

import "github.com/frahmantamala/issue-management/internal/auth"

// Actor is the identity every engine operation is evaluated against.
type Actor struct {
	ID         int64
	Role       auth.Role
	Department string
}

func ActorFromUser(u *auth.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, Department: u.Department}
}

// CanAccess is the central department-scope predicate: same department,
// organization-wide issue, or top-level authority.
func CanAccess(a Actor, i *Issue) bool {
	return a.Department == i.Department ||
		i.Scope == ScopeOrganization ||
		a.Role == auth.RoleAuthLevelThree
}

// CanUpdate: title/description edits belong to the creator alone.
func CanUpdate(a Actor, i *Issue) bool {
	return a.ID == i.CreatedBy
}

func CanDelete(a Actor, i *Issue) bool {
	return a.ID == i.CreatedBy || a.Role == auth.RoleModerator
}

func CanResolve(a Actor, i *Issue) bool {
	return a.ID == i.CreatedBy || a.Role == auth.RoleModerator
}

func CanUpvote(a Actor, i *Issue) bool {
	return CanAccess(a, i)
}

func CanComment(a Actor, i *Issue) bool {
	return CanAccess(a, i)
}

// CanPostSolution: plain users and moderators never post solutions; level-one
// authorities only within their own department; higher levels anywhere.
func CanPostSolution(a Actor, i *Issue) bool {
	switch a.Role {
	case auth.RoleUser, auth.RoleModerator:
		return false
	case auth.RoleAuthLevelOne:
		return a.Department == i.Department
	case auth.RoleAuthLevelTwo, auth.RoleAuthLevelThree:
		return true
	}
	return false
}

// CanReport: same department, or a level-two/level-three authority.
func CanReport(a Actor, i *Issue) bool {
	if a.Department == i.Department {
		return true
	}
	switch a.Role {
	case auth.RoleAuthLevelTwo, auth.RoleAuthLevelThree:
		return true
	case auth.RoleUser, auth.RoleModerator, auth.RoleAuthLevelOne:
		return false
	}
	return false
}

// SeesFullDetail gates the field-level projection: creator, moderators and
// top-level authorities get the unreduced view.
func SeesFullDetail(a Actor, i *Issue) bool {
	return a.ID == i.CreatedBy ||
		a.Role == auth.RoleModerator ||
		a.Role == auth.RoleAuthLevelThree
}
