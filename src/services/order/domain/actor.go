package domain

import (
	"context"
	"fmt"
)

// Role is the staff role verified by the upstream authentication layer.
type Role struct {
	name string
}

var (
	RoleCashier = Role{"cashier"}
	RoleKitchen = Role{"kitchen"}
	RoleAdmin   = Role{"admin"}
)

func ParseRole(name string) (Role, error) {
	for _, r := range []Role{RoleCashier, RoleKitchen, RoleAdmin} {
		if r.name == name {
			return r, nil
		}
	}
	return Role{}, fmt.Errorf("unknown role %q", name)
}

func (r Role) String() string { return r.name }

func (r Role) IsValid() bool { return r.name != "" }

type actorKeyType string

const actorKey actorKeyType = "staffRole"

// WithActor annotates ctx with the caller's role.
func WithActor(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, actorKey, role)
}

// ActorFromContext returns the annotated role, if any.
func ActorFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(actorKey).(Role)
	return role, ok && role.IsValid()
}
