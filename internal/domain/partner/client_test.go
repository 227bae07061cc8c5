package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validGSTIN = "29ABCDE1234F1Z5"

func TestIsValidGSTIN(t *testing.T) {
	tests := []struct {
		name  string
		gstin string
		valid bool
	}{
		{"valid karnataka gstin", "29ABCDE1234F1Z5", true},
		{"valid maharashtra gstin", "27AAPFU0939F1ZV", true},
		{"too short", "29ABCDE1234F1Z", false},
		{"too long", "29ABCDE1234F1Z55", false},
		{"lowercase", "29abcde1234f1z5", false},
		{"missing z marker", "29ABCDE1234F1X5", false},
		{"letters in state code", "XXABCDE1234F1Z5", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidGSTIN(tt.gstin))
		})
	}
}

func TestStateCodeFromGSTIN(t *testing.T) {
	assert.Equal(t, "29", StateCodeFromGSTIN(validGSTIN))
	assert.Equal(t, "", StateCodeFromGSTIN("not-a-gstin"))
	assert.Equal(t, "", StateCodeFromGSTIN(""))
}

func TestNewClient(t *testing.T) {
	t.Run("registered client", func(t *testing.T) {
		client, err := NewClient("Acme Traders", "billing@acme.example", validGSTIN)
		require.NoError(t, err)
		assert.Equal(t, "29", client.StateCode)
		assert.True(t, client.IsRegistered())
		assert.True(t, client.IsActive())
		assert.Len(t, client.GetDomainEvents(), 1)
	})

	t.Run("unregistered client", func(t *testing.T) {
		client, err := NewClient("Cash Customer", "", "")
		require.NoError(t, err)
		assert.False(t, client.IsRegistered())
		assert.Equal(t, "", client.StateCode)
	})

	t.Run("gstin normalized to upper case", func(t *testing.T) {
		client, err := NewClient("Acme", "", "  29abcde1234f1z5  ")
		// lowercase input is upper-cased before validation
		require.NoError(t, err)
		assert.Equal(t, validGSTIN, client.GSTIN)
	})

	t.Run("malformed gstin rejected", func(t *testing.T) {
		_, err := NewClient("Acme", "", "BOGUS")
		assert.Error(t, err)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := NewClient("", "", "")
		assert.Error(t, err)
	})
}

func TestClient_SetGSTIN(t *testing.T) {
	client, err := NewClient("Acme", "", "")
	require.NoError(t, err)

	require.NoError(t, client.SetGSTIN(validGSTIN))
	assert.Equal(t, "29", client.StateCode)
	assert.True(t, client.IsRegistered())

	require.NoError(t, client.SetGSTIN(""))
	assert.False(t, client.IsRegistered())

	assert.Error(t, client.SetGSTIN("short"))
}

func TestClient_Lifecycle(t *testing.T) {
	client, err := NewClient("Acme", "a@b.c", validGSTIN)
	require.NoError(t, err)

	client.Deactivate()
	assert.False(t, client.IsActive())

	client.Activate()
	assert.True(t, client.IsActive())

	require.NoError(t, client.Update("Acme Global", "new@acme.example", "+91-80-12345678", "R. Iyer"))
	assert.Equal(t, "Acme Global", client.Name)
	assert.Error(t, client.Update("", "", "", ""))
}
