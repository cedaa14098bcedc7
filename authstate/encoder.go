package authstate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	stateFormatVersionCurrent = 2
	stateFormatVersionV1      = 1
)

const flagHasUser = 1 << 0

// ErrUnsupportedStateVersion is returned by [Decode] for snapshot blobs
// written by a newer (or unknown) client.
var ErrUnsupportedStateVersion = errors.New("unsupported state schema version")

func writeShortString(buf *bytes.Buffer, field, s string) error {
	if len(s) > 255 {
		return errors.New(field + " too long")
	}
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
	return nil
}

func readShortString(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// Encode serializes a state snapshot into the compact binary format persisted
// by the store. The format is append-only across versions: v2 added the
// avatar and account-creation fields after the role byte.
func Encode(s *State) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(stateFormatVersionCurrent)

	var flags byte
	if s.User != nil {
		flags |= flagHasUser
	}
	buf.WriteByte(flags)

	if len(s.AccessToken) > 0xFFFF {
		return nil, errors.New("access token too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(s.AccessToken))); err != nil {
		return nil, err
	}
	buf.WriteString(s.AccessToken)

	if s.User != nil {
		if err := writeShortString(&buf, "user id", s.User.ID); err != nil {
			return nil, err
		}
		if err := writeShortString(&buf, "user name", s.User.Name); err != nil {
			return nil, err
		}
		if err := writeShortString(&buf, "user email", s.User.Email); err != nil {
			return nil, err
		}
		buf.WriteByte(byte(s.User.Role))
		if err := writeShortString(&buf, "user avatar", s.User.AvatarURL); err != nil {
			return nil, err
		}
		if err := writeShortString(&buf, "user created-at", s.User.CreatedAt); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(&buf, binary.BigEndian, s.UpdatedAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a persisted snapshot, accepting every known schema version.
// Any structural defect is an error; the store maps all decode errors to
// "no prior state".
func Decode(data []byte) (*State, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != stateFormatVersionCurrent && version != stateFormatVersionV1 {
		return nil, ErrUnsupportedStateVersion
	}

	flags, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	s := &State{}

	var tokenLen uint16
	if err := binary.Read(reader, binary.BigEndian, &tokenLen); err != nil {
		return nil, err
	}
	token := make([]byte, tokenLen)
	if _, err := io.ReadFull(reader, token); err != nil {
		return nil, err
	}
	s.AccessToken = string(token)

	if flags&flagHasUser != 0 {
		u := &User{}
		if u.ID, err = readShortString(reader); err != nil {
			return nil, err
		}
		if u.Name, err = readShortString(reader); err != nil {
			return nil, err
		}
		if u.Email, err = readShortString(reader); err != nil {
			return nil, err
		}
		roleByte, err := reader.ReadByte()
		if err != nil {
			return nil, err
		}
		u.Role = Role(roleByte)
		if !u.Role.Valid() {
			return nil, errors.New("invalid role in state snapshot")
		}
		if version >= stateFormatVersionCurrent {
			if u.AvatarURL, err = readShortString(reader); err != nil {
				return nil, err
			}
			if u.CreatedAt, err = readShortString(reader); err != nil {
				return nil, err
			}
		}
		s.User = u
	}

	if err := binary.Read(reader, binary.BigEndian, &s.UpdatedAt); err != nil {
		return nil, err
	}

	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes in state snapshot")
	}

	s.IsAuthenticated = s.AccessToken != "" && s.User != nil
	return s, nil
}
