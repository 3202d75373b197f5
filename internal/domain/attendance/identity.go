package attendance

import (
	"strings"
)

// Identity is the set of fields that can tie a record to a member.
type Identity struct {
	MemberID  string
	StudentID string
	RFIDID    string
	Name      string
}

// KeyKind names which identity field produced a member key.
type KeyKind string

const (
	KeyMemberID  KeyKind = "member"
	KeyStudentID KeyKind = "student"
	KeyRFID      KeyKind = "rfid"
	KeyName      KeyKind = "name"
)

// MemberKey is the grouping key for one member's records on a date.
type MemberKey struct {
	Kind  KeyKind
	Value string
}

func (k MemberKey) String() string {
	return string(k.Kind) + ":" + k.Value
}

// NormalizeName lowercases, trims and collapses inner whitespace.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// KeyOf resolves the member key in a fixed order: member id, student id,
// RFID, then normalized name. ok is false when every field is empty.
func KeyOf(id Identity) (MemberKey, bool) {
	switch {
	case strings.TrimSpace(id.MemberID) != "":
		return MemberKey{Kind: KeyMemberID, Value: strings.TrimSpace(id.MemberID)}, true
	case strings.TrimSpace(id.StudentID) != "":
		return MemberKey{Kind: KeyStudentID, Value: strings.TrimSpace(id.StudentID)}, true
	case strings.TrimSpace(id.RFIDID) != "":
		return MemberKey{Kind: KeyRFID, Value: strings.TrimSpace(id.RFIDID)}, true
	}
	if n := NormalizeName(id.Name); n != "" {
		return MemberKey{Kind: KeyName, Value: n}, true
	}
	return MemberKey{}, false
}

// Matches reports whether two identities refer to the same member on any
// non-empty field. Names compare case-insensitively after normalization.
func (id Identity) Matches(other Identity) bool {
	eq := func(a, b string) bool {
		a, b = strings.TrimSpace(a), strings.TrimSpace(b)
		return a != "" && a == b
	}
	if eq(id.MemberID, other.MemberID) || eq(id.StudentID, other.StudentID) || eq(id.RFIDID, other.RFIDID) {
		return true
	}
	n := NormalizeName(id.Name)
	return n != "" && n == NormalizeName(other.Name)
}
