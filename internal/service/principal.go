package service

import (
	"context"
	"fmt"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository"
)

// Principal is the authenticated caller of a service operation.
type Principal struct {
	UserID      string
	Subject     string
	Role        models.Role
	Email       string
	DisplayName string
}

func NewPrincipal(u *models.User) Principal {
	return Principal{
		UserID:      u.ID,
		Subject:     u.Subject,
		Role:        u.Role,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}

func (p Principal) IsStudent() bool    { return p.Role == models.RoleStudent }
func (p Principal) IsSupervisor() bool { return p.Role == models.RoleSupervisor }
func (p Principal) IsAdmin() bool      { return p.Role == models.RoleAdmin }

func (p Principal) require(role models.Role) error {
	if p.Role != role {
		return fmt.Errorf("%w: %s role required", ErrForbidden, role)
	}
	return nil
}

// supervises reports whether supervisorID is the supervisor on the
// student's dissertation.
func supervises(ctx context.Context, store repository.Store, supervisorID, studentID string) (bool, error) {
	d, err := store.Dissertations().GetByStudentID(ctx, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to get dissertation: %w", err)
	}
	return d != nil && d.SupervisorID == supervisorID, nil
}

// canAccessStudent reports whether p may read data owned by studentID.
func canAccessStudent(ctx context.Context, store repository.Store, p Principal, studentID string) (bool, error) {
	switch p.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleStudent:
		return p.UserID == studentID, nil
	case models.RoleSupervisor:
		return supervises(ctx, store, p.UserID, studentID)
	default:
		return false, nil
	}
}
