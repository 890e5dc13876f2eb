package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"callcenter-go/internal/types"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "09101112222", NormalizePhone("0910-111 2222"))
	assert.Equal(t, "989101112222", NormalizePhone("+98 (910) 111-2222"))
	assert.Equal(t, "", NormalizePhone(" - "))
}

func TestCanCall(t *testing.T) {
	self := types.Profile{Phone: "0910 111 2222", Role: types.RoleCaller}
	admin := types.Profile{Phone: "0999-000-0000", Role: types.RoleAdmin, IsAdmin: true}
	nobody := types.Profile{}

	mine := types.Contact{ID: 1, AssignedCallerPhone: "09101112222"}
	other := types.Contact{ID: 2, AssignedCallerPhone: "0920 000 0000"}
	open := types.Contact{ID: 3}
	blankish := types.Contact{ID: 4, AssignedCallerPhone: " - "}
	adminOwn := types.Contact{ID: 5, AssignedCallerPhone: "09990000000"}

	tests := []struct {
		name     string
		identity types.Profile
		contact  types.Contact
		want     bool
	}{
		{"assigned to self, formatting differs", self, mine, true},
		{"assigned to another caller", self, other, false},
		{"unassigned is open", self, open, true},
		{"assignment without digits counts as unassigned", self, blankish, true},
		{"admin cannot call others' contacts", admin, mine, false},
		{"admin can call own assignment", admin, adminOwn, true},
		{"admin can call unassigned", admin, open, true},
		{"no phone never matches an assignment", nobody, mine, false},
		{"no phone may still call unassigned", nobody, open, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanCall(tt.identity, tt.contact))
		})
	}
}

func TestCallable(t *testing.T) {
	self := types.Profile{Phone: "0910"}
	in := []types.Contact{
		{ID: 1, AssignedCallerPhone: "0910"},
		{ID: 2, AssignedCallerPhone: "0920"},
		{ID: 3},
	}
	out := Callable(self, in)
	assert.Len(t, out, 2)
	assert.EqualValues(t, 1, out[0].ID)
	assert.EqualValues(t, 3, out[1].ID)
	assert.True(t, Assigned(in[0]))
	assert.False(t, Assigned(in[2]))
}
