package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses() {
		parsed, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	for _, bad := range []string{"", "Pending", "delivered", "ready "} {
		_, err := ParseStatus(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePaymentStatus(t *testing.T) {
	paid, err := ParsePaymentStatus("paid")
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, paid)
	assert.Equal(t, PaymentPaid, PaymentStatusOf(true))
	assert.Equal(t, PaymentUnpaid, PaymentStatusOf(false))

	_, err = ParsePaymentStatus("refunded")
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("kitchen")
	require.NoError(t, err)
	assert.Equal(t, RoleKitchen, role)

	_, err = ParseRole("manager")
	assert.Error(t, err)
}

func TestStatusJSON(t *testing.T) {
	body, err := json.Marshal(struct {
		Status  Status        `json:"status"`
		Payment PaymentStatus `json:"payment"`
	}{StatusReady, PaymentPaid})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ready","payment":"paid"}`, string(body))

	var decoded struct {
		Status Status `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"served"}`), &decoded))
	assert.Equal(t, StatusServed, decoded.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"burnt"}`), &decoded))

	_, err = json.Marshal(struct {
		Status Status `json:"status"`
	}{})
	assert.Error(t, err)
}
