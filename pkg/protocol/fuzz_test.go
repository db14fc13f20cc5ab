package protocol

import "testing"

// Decoders must never panic or over-allocate on arbitrary input; they
// either produce a value or return an error.

func FuzzDecodeFrame(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x01, 0x00, 0x00, 0x00})
	f.Add(NewFrame(FrameNavigate, []byte{0x00, 0x01, '/'}).Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		frame, err := DecodeFrame(data)
		if err != nil {
			return
		}
		if len(frame.Payload) > MaxPayloadSize {
			t.Fatalf("decoded payload of %d bytes exceeds limit", len(frame.Payload))
		}
	})
}

func FuzzDecodeViewUpdate(f *testing.F) {
	f.Add(EncodeViewUpdate(&ViewUpdate{Name: "user", Path: "/users/1", Params: map[string]string{"id": "1"}}))
	f.Add([]byte{0xFF, 0xFF, 0xFF})

	f.Fuzz(func(t *testing.T, data []byte) {
		vu, err := DecodeViewUpdate(data)
		if err != nil {
			return
		}
		if len(vu.Params) > MaxCollectionCount {
			t.Fatalf("decoded %d params, exceeds collection limit", len(vu.Params))
		}
	})
}

func FuzzDecodeNavigateEvent(f *testing.F) {
	f.Add(EncodeNavigateEvent(&NavigateEvent{Kind: NavigatePush, URL: "/a/b"}))
	f.Add([]byte{0x02})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = DecodeNavigateEvent(data)
	})
}
