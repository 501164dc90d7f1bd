package circulation

import (
	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/errs"
)

// Action is something a role may be allowed to do.
type Action string

const (
	ActionBorrow                 Action = "borrow"
	ActionManageCatalog          Action = "manage_catalog"
	ActionIssueForOthers         Action = "issue_for_others"
	ActionManageUsers            Action = "manage_users"
	ActionViewCirculationReports Action = "view_circulation_reports"
	ActionViewUserReports        Action = "view_user_reports"
)

// Policy is the static behaviour attached to a role.
type Policy struct {
	Role    entities.Role `json:"role"`
	Home    string        `json:"home"`
	Actions []Action      `json:"actions"`
}

// Allows reports whether the policy grants action.
func (p Policy) Allows(action Action) bool {
	for _, a := range p.Actions {
		if a == action {
			return true
		}
	}
	return false
}

var policies = map[entities.Role]Policy{
	entities.RoleStudent: {
		Role:    entities.RoleStudent,
		Home:    "/student",
		Actions: []Action{ActionBorrow},
	},
	entities.RoleLibrarian: {
		Role: entities.RoleLibrarian,
		Home: "/librarian",
		Actions: []Action{
			ActionManageCatalog,
			ActionIssueForOthers,
			ActionViewCirculationReports,
		},
	},
	entities.RoleAdmin: {
		Role: entities.RoleAdmin,
		Home: "/admin",
		Actions: []Action{
			ActionManageCatalog,
			ActionIssueForOthers,
			ActionManageUsers,
			ActionViewCirculationReports,
			ActionViewUserReports,
		},
	},
}

// PolicyFor returns the policy of role. Unknown roles get an empty policy.
func PolicyFor(role entities.Role) Policy {
	return policies[role]
}

// Authorize fails with errs.ErrNotEligible unless role may perform action.
func Authorize(role entities.Role, action Action) error {
	if !PolicyFor(role).Allows(action) {
		return errs.NotEligible("role %q may not %s", role, action)
	}
	return nil
}
