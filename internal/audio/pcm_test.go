package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWAVRoundTrip(t *testing.T) {
	pcm := make([]byte, 3200)
	for i := 0; i < len(pcm)/2; i++ {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(i%2000-1000)))
	}

	wav := EncodeWAV(pcm, DefaultSampleRate)

	// Header fields of the canonical wire format.
	if channels := binary.LittleEndian.Uint16(wav[22:24]); channels != 1 {
		t.Errorf("channels = %d, want 1", channels)
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != DefaultSampleRate {
		t.Errorf("sample rate = %d, want %d", rate, DefaultSampleRate)
	}
	if bits := binary.LittleEndian.Uint16(wav[34:36]); bits != 16 {
		t.Errorf("bits per sample = %d, want 16", bits)
	}

	got, rate, err := DecodeWAV(wav)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if rate != DefaultSampleRate {
		t.Errorf("decoded rate = %d, want %d", rate, DefaultSampleRate)
	}
	if !bytes.Equal(got, pcm) {
		t.Error("decoded PCM differs from input")
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("not audio"),
		bytes.Repeat([]byte{0}, 44),
	}
	for _, c := range cases {
		if _, _, err := DecodeWAV(c); err == nil {
			t.Errorf("DecodeWAV(%d bytes) succeeded, want error", len(c))
		}
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %f, want 0", got)
	}

	silence := make([]byte, 1000)
	if got := RMS(silence); got != 0 {
		t.Errorf("RMS(silence) = %f, want 0", got)
	}

	loud := make([]byte, 1000)
	for i := 0; i < len(loud)/2; i++ {
		binary.LittleEndian.PutUint16(loud[i*2:], uint16(int16(10000)))
	}
	if got := RMS(loud); got < 9999 || got > 10001 {
		t.Errorf("RMS(constant 10000) = %f, want ~10000", got)
	}
}

func TestResampleHalvesLength(t *testing.T) {
	pcm := make([]byte, 4800) // 100ms at 24kHz
	out := Resample(pcm, 24000, 16000)
	if want := 3200; len(out) != want {
		t.Errorf("resampled length = %d, want %d", len(out), want)
	}

	same := Resample(pcm, 16000, 16000)
	if !bytes.Equal(same, pcm) {
		t.Error("equal-rate resample should be identity")
	}
}
