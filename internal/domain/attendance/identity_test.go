package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyOf_Order(t *testing.T) {
	cases := []struct {
		name string
		id   Identity
		want MemberKey
	}{
		{"member id wins", Identity{MemberID: "m1", StudentID: "s1", RFIDID: "r1", Name: "Budi"}, MemberKey{KeyMemberID, "m1"}},
		{"student id next", Identity{StudentID: "s1", RFIDID: "r1", Name: "Budi"}, MemberKey{KeyStudentID, "s1"}},
		{"rfid next", Identity{RFIDID: "r1", Name: "Budi"}, MemberKey{KeyRFID, "r1"}},
		{"normalized name last", Identity{Name: "  Budi   SANTOSO "}, MemberKey{KeyName, "budi santoso"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := KeyOf(c.id)
			assert.True(t, ok)
			assert.Equal(t, c.want, got)
		})
	}

	_, ok := KeyOf(Identity{Name: "   "})
	assert.False(t, ok)
}

func TestIdentity_Matches(t *testing.T) {
	member := Identity{MemberID: "m1", StudentID: "2110001", RFIDID: "A1B2", Name: "Budi Santoso"}

	assert.True(t, member.Matches(Identity{MemberID: "m1"}))
	assert.True(t, member.Matches(Identity{StudentID: "2110001"}))
	assert.True(t, member.Matches(Identity{RFIDID: "A1B2"}))
	assert.True(t, member.Matches(Identity{Name: "budi  santoso"}))
	assert.False(t, member.Matches(Identity{MemberID: "m2", Name: "Andi"}))
	assert.False(t, member.Matches(Identity{}))
}
