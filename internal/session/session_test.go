package session

import (
	"encoding/json"
	"testing"
)

type mapReader map[string]string

func (m mapReader) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok && v != ""
}

func (m mapReader) GetJSON(key string, dst any) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(v), dst) == nil
}

func TestHomeFor(t *testing.T) {
	cases := map[Role]string{
		RoleAdmin:     AdminHome,
		RoleSeller:    SellerHome,
		RoleCustomer:  HomeRoute,
		Role("STAFF"): HomeRoute,
	}
	for role, want := range cases {
		if got := HomeFor(role); got != want {
			t.Fatalf("HomeFor(%s) = %s, want %s", role, got, want)
		}
	}
}

func TestParseRole(t *testing.T) {
	if got := ParseRole(" seller "); got != RoleSeller {
		t.Fatalf("expected SELLER, got %s", got)
	}
	if got := ParseRole("staff"); got != Role("staff") {
		t.Fatalf("expected unknown role kept verbatim, got %s", got)
	}
}

func TestLoad(t *testing.T) {
	s := Load(mapReader{
		KeyAccessToken: "tok",
		KeyUser:        `{"id":7,"email":"a@b.c","fullName":"A","role":"admin"}`,
	})
	if !s.Authenticated {
		t.Fatalf("expected authenticated session")
	}
	if s.Profile == nil || s.Profile.ID != 7 || s.Role() != RoleAdmin {
		t.Fatalf("unexpected profile: %+v", s.Profile)
	}
}

func TestLoadWithoutProfile(t *testing.T) {
	s := Load(mapReader{KeyUser: "not-json"})
	if s.Authenticated {
		t.Fatalf("expected unauthenticated session")
	}
	if s.Profile != nil {
		t.Fatalf("expected no profile for corrupted entry")
	}
	if s.Role() != RoleGuest {
		t.Fatalf("expected guest role, got %s", s.Role())
	}
}
