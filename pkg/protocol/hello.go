package protocol

import "errors"

// ProtocolVersion is the current wire protocol version.
const ProtocolVersion = 1

// ErrVersionMismatch is returned when the client speaks a different
// protocol version.
var ErrVersionMismatch = errors.New("protocol: version mismatch")

// ClientHello is the first frame a client sends after connecting.
type ClientHello struct {
	Version   uint8
	SessionID string // Empty for a new session
	URL       string // Initial URL the client is at
}

// ServerHello is the server's response to a ClientHello.
type ServerHello struct {
	Version   uint8
	SessionID string // Assigned (or resumed) session ID
	Resumed   bool   // True if an existing session was resumed
}

// EncodeClientHello encodes a ClientHello to bytes.
func EncodeClientHello(h *ClientHello) []byte {
	e := NewEncoder()
	e.WriteByte(h.Version)
	e.WriteString(h.SessionID)
	e.WriteString(h.URL)
	return e.Bytes()
}

// DecodeClientHello decodes a ClientHello from bytes. Returns
// ErrVersionMismatch if the version is unsupported.
func DecodeClientHello(data []byte) (*ClientHello, error) {
	d := NewDecoder(data)

	version, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != ProtocolVersion {
		return nil, ErrVersionMismatch
	}
	sessionID, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	url, err := d.ReadString()
	if err != nil {
		return nil, err
	}

	return &ClientHello{
		Version:   version,
		SessionID: sessionID,
		URL:       url,
	}, nil
}

// EncodeServerHello encodes a ServerHello to bytes.
func EncodeServerHello(h *ServerHello) []byte {
	e := NewEncoder()
	e.WriteByte(h.Version)
	e.WriteString(h.SessionID)
	e.WriteBool(h.Resumed)
	return e.Bytes()
}

// DecodeServerHello decodes a ServerHello from bytes.
func DecodeServerHello(data []byte) (*ServerHello, error) {
	d := NewDecoder(data)

	version, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	sessionID, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	resumed, err := d.ReadBool()
	if err != nil {
		return nil, err
	}

	return &ServerHello{
		Version:   version,
		SessionID: sessionID,
		Resumed:   resumed,
	}, nil
}
