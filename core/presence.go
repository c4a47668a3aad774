package core

import (
	"encoding/json"
	"errors"
)

const (
	// TypePresence tags a presence announcement. The discovery message
	// set is a tagged union with a single variant for now.
	TypePresence = "presence"

	// maxDatagramSize bounds one discovery datagram. One datagram
	// carries exactly one message.
	maxDatagramSize = 1024
)

var (
	ErrMalformedDatagram = errors.New("malformed presence datagram")

	validTypes = map[string]bool{
		TypePresence: true,
	}
)

// PresenceMessage announces a username on the discovery channel. The
// sender's address comes from the datagram itself, never the payload.
type PresenceMessage struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

func NewPresence(username string) *PresenceMessage {
	return &PresenceMessage{
		Type:     TypePresence,
		Username: username,
	}
}

type EncodedDatagram []byte

func (e *EncodedDatagram) String() string {
	return string(*e)
}

// Parse decodes a discovery datagram. Broken JSON, unknown types and
// empty usernames all come back as ErrMalformedDatagram.
func (e *EncodedDatagram) Parse() (*PresenceMessage, error) {
	var msg PresenceMessage
	if err := json.Unmarshal(*e, &msg); err != nil {
		return nil, ErrMalformedDatagram
	}

	if !validTypes[msg.Type] {
		return nil, ErrMalformedDatagram
	}

	if msg.Username == "" {
		return nil, ErrMalformedDatagram
	}

	return &msg, nil
}

func (m *PresenceMessage) Encoded() (*EncodedDatagram, error) {
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	encoded := EncodedDatagram(jsonBytes)
	return &encoded, nil
}
