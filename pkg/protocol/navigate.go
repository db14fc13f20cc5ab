package protocol

// NavigateKind identifies how the client changed the URL.
type NavigateKind uint8

const (
	NavigatePush    NavigateKind = 0x00 // New entry (link click, programmatic push)
	NavigateReplace NavigateKind = 0x01 // Replace current entry
	NavigateBack    NavigateKind = 0x02 // History back (popstate)
	NavigateForward NavigateKind = 0x03 // History forward (popstate)
)

// String returns the string representation of the navigate kind.
func (nk NavigateKind) String() string {
	switch nk {
	case NavigatePush:
		return "Push"
	case NavigateReplace:
		return "Replace"
	case NavigateBack:
		return "Back"
	case NavigateForward:
		return "Forward"
	default:
		return "Unknown"
	}
}

// NavigateEvent is sent by the client when its URL changes. For Back and
// Forward the URL field is empty; the server's history decides the target.
type NavigateEvent struct {
	Kind NavigateKind
	URL  string // Relative URL ("/users/42?tab=posts"), empty for Back/Forward
}

// EncodeNavigateEvent encodes a NavigateEvent to bytes.
func EncodeNavigateEvent(ev *NavigateEvent) []byte {
	e := NewEncoder()
	e.WriteByte(byte(ev.Kind))
	e.WriteString(ev.URL)
	return e.Bytes()
}

// DecodeNavigateEvent decodes a NavigateEvent from bytes.
func DecodeNavigateEvent(data []byte) (*NavigateEvent, error) {
	d := NewDecoder(data)

	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	url, err := d.ReadString()
	if err != nil {
		return nil, err
	}

	return &NavigateEvent{
		Kind: NavigateKind(kind),
		URL:  url,
	}, nil
}
