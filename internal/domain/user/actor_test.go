package user

import (
	"errors"
	"testing"

	"creator-marketplace/internal/domain/apperr"
)

func TestActor_Can(t *testing.T) {
	brand := Actor{UserID: "b1", Role: RoleBrand}
	creator := Actor{UserID: "c1", Role: RoleCreator}
	admin := Actor{UserID: "a1", Role: RoleAdmin}

	tests := []struct {
		name  string
		actor Actor
		cap   Capability
		ok    bool
	}{
		{"brand owns", brand, Capability{Roles: []Role{RoleBrand}, Parties: []string{"b1"}}, true},
		{"brand not party", brand, Capability{Roles: []Role{RoleBrand}, Parties: []string{"b2"}}, false},
		{"creator wrong role", creator, Capability{Roles: []Role{RoleBrand}, Parties: []string{"c1"}}, false},
		{"either party", creator, Capability{Parties: []string{"b1", "c1"}}, true},
		{"admin bypass", admin, Capability{Roles: []Role{RoleBrand}, Parties: []string{"b1"}, AdminBypass: true}, true},
		{"admin without bypass", admin, Capability{Roles: []Role{RoleBrand}, Parties: []string{"b1"}}, false},
		{"admin role only", admin, Capability{Roles: []Role{RoleAdmin}}, true},
		{"anonymous", Actor{}, Capability{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.actor.Can(tt.cap)
			if tt.ok && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if !tt.ok && !errors.Is(err, apperr.ErrForbidden) {
				t.Fatalf("want ErrForbidden, got %v", err)
			}
		})
	}
}
