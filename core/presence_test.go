package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceEncodedParse(t *testing.T) {
	encoded, err := NewPresence("fox").Encoded()
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"presence","username":"fox"}`, encoded.String())

	msg, err := encoded.Parse()
	require.NoError(t, err)
	assert.Equal(t, TypePresence, msg.Type)
	assert.Equal(t, "fox", msg.Username)
}

func TestParseMalformedDatagram(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "hello there"},
		{name: "empty payload", data: ""},
		{name: "json but wrong shape", data: `["presence","fox"]`},
		{name: "unknown type", data: `{"type":"farewell","username":"fox"}`},
		{name: "missing type", data: `{"username":"fox"}`},
		{name: "missing username", data: `{"type":"presence"}`},
		{name: "empty username", data: `{"type":"presence","username":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodedDatagram(tt.data)

			msg, err := encoded.Parse()
			assert.Nil(t, msg)
			assert.ErrorIs(t, err, ErrMalformedDatagram)
		})
	}
}

func TestParseIgnoresExtraFields(t *testing.T) {
	encoded := EncodedDatagram(`{"type":"presence","username":"fox","hostname":"den"}`)

	msg, err := encoded.Parse()
	require.NoError(t, err)
	assert.Equal(t, "fox", msg.Username)
}
