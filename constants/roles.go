package constants

// Role is the single role a user carries for the lifetime of a session.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleTeamMember     Role = "TEAM_MEMBER"
	RoleFinance        Role = "FINANCE"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleTeamMember, RoleFinance:
		return true
	}
	return false
}
