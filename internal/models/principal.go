package models

// Principal is the authenticated identity attached to a single request.
type Principal struct {
	UserID      string
	Username    string
	Role        Role
	Authorities []string
}

func NewPrincipal(u *User) *Principal {
	return &Principal{
		UserID:      u.ID.Hex(),
		Username:    u.Username,
		Role:        u.Role,
		Authorities: []string{"ROLE_" + string(u.Role)},
	}
}

func (p *Principal) HasRole(roles ...Role) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

func (p *Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}
