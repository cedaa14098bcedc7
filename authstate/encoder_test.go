package authstate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func sampleState() *State {
	return &State{
		AccessToken: "header.payload.signature",
		User: &User{
			ID:        "u-42",
			Name:      "Ada Volunteer",
			Email:     "ada@example.org",
			Role:      RoleVolunteer,
			AvatarURL: "https://cdn.example.org/a.png",
			CreatedAt: "2026-01-15T10:00:00Z",
		},
		IsAuthenticated: true,
		UpdatedAt:       1760000000,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := sampleState()

	data, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got.AccessToken != want.AccessToken {
		t.Fatalf("token mismatch: %q vs %q", got.AccessToken, want.AccessToken)
	}
	if got.User == nil || *got.User != *want.User {
		t.Fatalf("user mismatch: %+v vs %+v", got.User, want.User)
	}
	if !got.IsAuthenticated {
		t.Fatal("expected derived IsAuthenticated true")
	}
	if got.UpdatedAt != want.UpdatedAt {
		t.Fatalf("UpdatedAt mismatch: %d vs %d", got.UpdatedAt, want.UpdatedAt)
	}
}

func TestEncodeDecodeNoUser(t *testing.T) {
	data, err := Encode(&State{AccessToken: "", UpdatedAt: 7})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.User != nil || got.IsAuthenticated {
		t.Fatalf("expected empty unauthenticated state, got %+v", got)
	}
}

// encodeV1 writes the pre-avatar layout by hand: version 1 stopped after the
// role byte.
func encodeV1(t *testing.T, token, id, name, email string, role Role, updatedAt int64) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteByte(1)
	buf.WriteByte(flagHasUser)
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(token))); err != nil {
		t.Fatal(err)
	}
	buf.WriteString(token)
	for _, s := range []string{id, name, email} {
		buf.WriteByte(byte(len(s)))
		buf.WriteString(s)
	}
	buf.WriteByte(byte(role))
	if err := binary.Write(&buf, binary.BigEndian, updatedAt); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeAcceptsVersion1(t *testing.T) {
	data := encodeV1(t, "tok", "u1", "Ada", "ada@example.org", RoleNGO, 123)

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode of v1 snapshot failed: %v", err)
	}
	if got.User == nil || got.User.Role != RoleNGO || got.User.AvatarURL != "" {
		t.Fatalf("unexpected v1 user %+v", got.User)
	}
	if got.UpdatedAt != 123 {
		t.Fatalf("UpdatedAt mismatch: %d", got.UpdatedAt)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	data, err := Encode(sampleState())
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 99

	if _, err := Decode(data); !errors.Is(err, ErrUnsupportedStateVersion) {
		t.Fatalf("expected ErrUnsupportedStateVersion, got %v", err)
	}
}

func TestDecodeRejectsTruncatedSnapshot(t *testing.T) {
	data, err := Encode(sampleState())
	if err != nil {
		t.Fatal(err)
	}

	for cut := 1; cut < len(data); cut++ {
		if _, err := Decode(data[:cut]); err == nil {
			t.Fatalf("expected error for snapshot truncated at %d bytes", cut)
		}
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	data, err := Encode(sampleState())
	if err != nil {
		t.Fatal(err)
	}
	data = append(data, 0xFF)

	if _, err := Decode(data); err == nil {
		t.Fatal("expected error for trailing bytes")
	}
}

func TestDecodeRejectsInvalidRole(t *testing.T) {
	data := encodeV1(t, "tok", "u1", "Ada", "ada@example.org", Role(200), 1)
	if _, err := Decode(data); err == nil {
		t.Fatal("expected error for out-of-range role byte")
	}
}

func TestEncodeRejectsOversizedFields(t *testing.T) {
	s := sampleState()
	s.User.Name = strings.Repeat("x", 256)
	if _, err := Encode(s); err == nil {
		t.Fatal("expected error for 256-byte name")
	}
}

func FuzzDecode(f *testing.F) {
	seed, err := Encode(sampleState())
	if err != nil {
		f.Fatal(err)
	}
	f.Add(seed)
	f.Add([]byte{})
	f.Add([]byte{2, 0})
	f.Add([]byte{1, 1, 0, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		s, err := Decode(data)
		if err != nil {
			return
		}
		// Whatever decodes must re-encode and decode to the same state.
		round, err := Encode(s)
		if err != nil {
			t.Fatalf("re-encode of decoded state failed: %v", err)
		}
		again, err := Decode(round)
		if err != nil {
			t.Fatalf("decode of re-encoded state failed: %v", err)
		}
		if again.AccessToken != s.AccessToken || again.UpdatedAt != s.UpdatedAt {
			t.Fatal("round trip drifted")
		}
	})
}
