package role

import "context"

const Admin = "admin"

// Repository answers role membership from user_roles.
type Repository interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
	Grant(ctx context.Context, userID, role string) error
}
