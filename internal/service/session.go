package service

import "shop-manager/internal/domain"

// Session is the per-login application context. It is constructed after
// the remote backend authenticates the user and passed explicitly to
// every operation; there is no module-level current user.
type Session struct {
	UserID   string
	UserName string
	Role     domain.UserRole
}

// Privileged reports whether the session may edit sensitive item fields
// without recording an audit reason.
func (s *Session) Privileged() bool {
	return s.Role == domain.RoleAdmin
}
