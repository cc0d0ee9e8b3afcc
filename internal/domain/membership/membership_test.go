package membership

import (
	"errors"
	"testing"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMember(t *testing.T) {
	m, err := NewMember("  María Peña ", "1.023.456-7", "(300) 555-0101")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.Equal(t, "María Peña", m.Name)
	assert.Equal(t, "10234567", m.NationalID)
	assert.Equal(t, "3005550101", m.Phone)
	assert.Equal(t, "maria pena", m.SearchKey)
	assert.Equal(t, 1, m.Version)
}

func TestNewMember_Validation(t *testing.T) {
	tests := []struct {
		name       string
		memberName string
		nationalID string
	}{
		{"empty name", "   ", "123"},
		{"national id without digits", "Ana", "abc-"},
		{"empty national id", "Ana", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMember(tt.memberName, tt.nationalID, "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrValidation))
		})
	}
}

func TestMember_Rename(t *testing.T) {
	m, err := NewMember("Ana", "1", "")
	require.NoError(t, err)

	require.NoError(t, m.Rename("Ángela Ruiz"))
	assert.Equal(t, "angela ruiz", m.SearchKey)
	assert.Equal(t, 1, m.Version, "versions are advanced by the repository")

	assert.Error(t, m.Rename(""))
}

func TestMember_UpdatePhone(t *testing.T) {
	m, err := NewMember("Ana", "1", "0981")
	require.NoError(t, err)

	m.UpdatePhone("(0971) 222-333")
	assert.Equal(t, "0971222333", m.Phone)

	m.UpdatePhone("")
	assert.Empty(t, m.Phone)
}

func TestSearchKey(t *testing.T) {
	assert.Equal(t, "jose nunez", SearchKey("JOSÉ NÚÑEZ"))
	assert.Equal(t, "cta-001", SearchKey(" CTA-001 "))
}

func TestPropertyStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  PropertyStatus
		isValid bool
	}{
		{PropertyStatusActive, true},
		{PropertyStatusSuspended, true},
		{PropertyStatusCut, true},
		{PropertyStatus("CLOSED"), false},
		{PropertyStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestNewProperty(t *testing.T) {
	memberID := uuid.New()

	p, err := NewProperty(memberID, " CTA-001 ", "SN-1234", "Centro")
	require.NoError(t, err)
	assert.Equal(t, "CTA-001", p.AccountNumber)
	assert.Equal(t, PropertyStatusActive, p.Status)
	assert.Equal(t, memberID, p.MemberID)

	_, err = NewProperty(uuid.Nil, "CTA-002", "", "")
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = NewProperty(memberID, "", "", "")
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestProperty_ChangeStatus(t *testing.T) {
	p, err := NewProperty(uuid.New(), "CTA-001", "", "")
	require.NoError(t, err)

	require.NoError(t, p.ChangeStatus(PropertyStatusCut))
	assert.Equal(t, PropertyStatusCut, p.Status)
	updatedAt := p.UpdatedAt

	// same status is a no-op
	require.NoError(t, p.ChangeStatus(PropertyStatusCut))
	assert.Equal(t, updatedAt, p.UpdatedAt)

	err = p.ChangeStatus(PropertyStatus("GONE"))
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestProperty_ReplaceMeterAndSector(t *testing.T) {
	p, err := NewProperty(uuid.New(), "CTA-001", "SN-1", "Norte")
	require.NoError(t, err)

	p.ReplaceMeter(" SN-2 ")
	assert.Equal(t, "SN-2", p.MeterSerial)

	p.MoveToSector(" Sur ")
	assert.Equal(t, "Sur", p.Sector)
	updatedAt := p.UpdatedAt

	p.MoveToSector("Sur")
	assert.Equal(t, updatedAt, p.UpdatedAt)
}

func TestProperty_TransferTo(t *testing.T) {
	owner := uuid.New()
	p, err := NewProperty(owner, "CTA-001", "", "")
	require.NoError(t, err)

	buyer := uuid.New()
	require.NoError(t, p.TransferTo(buyer))
	assert.Equal(t, buyer, p.MemberID)

	err = p.TransferTo(uuid.Nil)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Equal(t, buyer, p.MemberID)
}
