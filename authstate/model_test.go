package authstate

import (
	"encoding/json"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"volunteer", RoleVolunteer, false},
		{"ngo", RoleNGO, false},
		{"admin", RoleAdmin, false},
		{"", RoleUnset, false},
		{"superuser", RoleUnset, true},
		{"Volunteer", RoleUnset, true},
	}

	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseRole(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseRole(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestRoleJSONNullForUnset(t *testing.T) {
	data, err := json.Marshal(RoleUnset)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "null" {
		t.Fatalf("expected null for unset role, got %s", data)
	}

	var r Role
	if err := json.Unmarshal([]byte("null"), &r); err != nil {
		t.Fatal(err)
	}
	if r != RoleUnset {
		t.Fatalf("expected unset from null, got %v", r)
	}
}

func TestRoleJSONRoundTrip(t *testing.T) {
	for _, role := range []Role{RoleVolunteer, RoleNGO, RoleAdmin} {
		data, err := json.Marshal(role)
		if err != nil {
			t.Fatal(err)
		}
		var back Role
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatal(err)
		}
		if back != role {
			t.Fatalf("round trip drifted: %v -> %s -> %v", role, data, back)
		}
	}
}

func TestRoleUnmarshalRejectsUnknown(t *testing.T) {
	var r Role
	if err := json.Unmarshal([]byte(`"root"`), &r); err == nil {
		t.Fatal("expected error for unknown role string")
	}
}
