package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLedgerStatus_CanSettleTo(t *testing.T) {
	tests := []struct {
		from LedgerStatus
		to   LedgerStatus
		want bool
	}{
		{LedgerPending, LedgerApproved, true},
		{LedgerPending, LedgerPaid, true},
		{LedgerApproved, LedgerPaid, true},
		{LedgerApproved, LedgerPending, false},
		{LedgerPending, LedgerPending, false},
		{LedgerPaid, LedgerPaid, false},
		{LedgerPaid, LedgerApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanSettleTo(tt.to))
		})
	}
}

func TestRecordPatch_IsEmpty(t *testing.T) {
	owner := "agent-1"
	name := "Ravi"
	area := decimal.RequireFromString("2.5")

	assert.True(t, RecordPatch{}.IsEmpty())
	assert.True(t, RecordPatch{Location: LocationPatch{OwnerID: &owner}}.IsEmpty(), "owner stamp alone is not a change")
	assert.False(t, RecordPatch{Farmer: FarmerPatch{Name: &name}}.IsEmpty())
	assert.False(t, RecordPatch{Parcel: ParcelPatch{LandArea: &area}}.IsEmpty())
	assert.False(t, RecordPatch{Parcel: ParcelPatch{Garden: Tags{{Name: "mango"}}}}.IsEmpty())
	assert.False(t, RecordPatch{Media: MediaPatch{LandPhoto: []string{"a.jpg"}}}.IsEmpty())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, StatusDraft.Valid())
	assert.True(t, StatusPublished.Valid())
	assert.False(t, RecordStatus("true").Valid())

	assert.True(t, VerificationRejected.Valid())
	assert.False(t, VerificationState("approved").Valid())

	assert.True(t, LandCodeAssigned.Valid())
	assert.False(t, LandCodeStatus("assigned").Valid())

	assert.True(t, LedgerTravel.Valid())
	assert.False(t, LedgerKind("bonus").Valid())
}

func TestRecordFilter_Normalize(t *testing.T) {
	f := RecordFilter{Limit: 0, Offset: -5}
	f.Normalize()
	assert.Equal(t, DefaultListLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)

	f = RecordFilter{Limit: 10000}
	f.Normalize()
	assert.Equal(t, MaxListLimit, f.Limit)
}

func TestAssignInput_IsEmpty(t *testing.T) {
	assert.True(t, AssignInput{ID: 4}.IsEmpty())

	assigned := LandCodeAssigned
	assert.False(t, AssignInput{ID: 4, Status: &assigned}.IsEmpty())
}

func TestOpenEntry_SubjectID(t *testing.T) {
	assert.Equal(t, "LAND-3", OpenEntry{LandID: "LAND-3"}.SubjectID())
	assert.Equal(t, "sess-9", OpenEntry{SessionID: "sess-9"}.SubjectID())
}

func TestActor_IsAdmin(t *testing.T) {
	assert.True(t, Actor{ID: "u1", Role: RoleAdmin}.IsAdmin())
	assert.False(t, Actor{ID: "u2", Role: RoleVerifier}.IsAdmin())
}
