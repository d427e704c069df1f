package service

import (
	"context"

	"github.com/google/uuid"

	"assignment_service/internal/domain"
	"assignment_service/pkg/ctxdata"
)

type caller struct {
	id   uuid.UUID
	role domain.UserRole
}

func callerFrom(ctx context.Context) (caller, error) {
	id, ok := ctxdata.GetUserUUID(ctx)
	if !ok {
		return caller{}, ErrPermissionDenied
	}
	role, ok := ctxdata.GetUserRole(ctx)
	if !ok {
		return caller{}, ErrPermissionDenied
	}
	return caller{id: id, role: domain.UserRole(role)}, nil
}

func (c caller) isStudent() bool { return c.role == domain.UserRoleStudent }

func (c caller) isStaff() bool {
	return c.role == domain.UserRoleInstructor || c.role == domain.UserRoleAdmin
}

// canManage reports whether the caller may change or grade the assignment.
func (c caller) canManage(a domain.Assignment) bool {
	return c.role == domain.UserRoleAdmin ||
		(c.role == domain.UserRoleInstructor && a.InstructorID() == c.id)
}

// canView hides unpublished assignments from students.
func (c caller) canView(a domain.Assignment) bool {
	if c.isStaff() {
		return true
	}
	return c.isStudent() && a.Status() == domain.AssignmentStatusPublished
}
