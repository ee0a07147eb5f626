package websocket

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestDecodeVoiceChunkBase64String(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0xFF}
	raw, _ := json.Marshal(base64.StdEncoding.EncodeToString(pcm))

	got, err := DecodeVoiceChunk(raw)
	if err != nil {
		t.Fatalf("DecodeVoiceChunk: %v", err)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("decoded = %v, want %v", got, pcm)
	}
}

func TestDecodeVoiceChunkIntArray(t *testing.T) {
	got, err := DecodeVoiceChunk(json.RawMessage(`[0, 128, 255]`))
	if err != nil {
		t.Fatalf("DecodeVoiceChunk: %v", err)
	}
	if !bytes.Equal(got, []byte{0, 128, 255}) {
		t.Errorf("decoded = %v", got)
	}
}

func TestDecodeVoiceChunkWrappedObject(t *testing.T) {
	pcm := []byte{0x10, 0x20}
	encoded := base64.StdEncoding.EncodeToString(pcm)
	raw := json.RawMessage(`{"chunk":"` + encoded + `"}`)

	got, err := DecodeVoiceChunk(raw)
	if err != nil {
		t.Fatalf("DecodeVoiceChunk: %v", err)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("decoded = %v, want %v", got, pcm)
	}
}

func TestDecodeVoiceChunkRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"out of range sample", `[300]`},
		{"negative sample", `[-1]`},
		{"not base64", `"!!!not-base64!!!"`},
		{"object without chunk", `{"data":"x"}`},
		{"number", `42`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeVoiceChunk(json.RawMessage(tc.raw)); err == nil {
				t.Errorf("DecodeVoiceChunk(%q) succeeded, want error", tc.raw)
			}
		})
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	raw := []byte(`{"event":"message","data":{"text":"hello"}}`)

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if env.Event != "message" {
		t.Errorf("event = %q, want message", env.Event)
	}

	var payload messagePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("Unmarshal data: %v", err)
	}
	if payload.Text != "hello" {
		t.Errorf("text = %q, want hello", payload.Text)
	}
}
