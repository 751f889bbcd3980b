package domain

// Role names checked by the posting engine. Admin roles satisfy any of the
// finance transition checks.
const (
	RoleFinanceWrite   = "finance:write"
	RoleFinancePost    = "finance:post"
	RoleFinanceReverse = "finance:reverse"
	RoleFinanceAdmin   = "finance:admin"
	RoleAccountant     = "accountant"
)

// Principal is the already-validated caller identity attached to every
// request. The engine never parses credentials itself.
type Principal struct {
	TenantID string   `json:"tenantID"`
	UserID   string   `json:"userID"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the principal carries the exact role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal carries at least one of the roles.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}
