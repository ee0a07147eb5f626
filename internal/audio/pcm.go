package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// DefaultSampleRate is the canonical wire format: PCM16 little-endian,
// mono, 16000 Hz.
const DefaultSampleRate = 16000

// EncodeWAV wraps raw PCM16 mono samples in a WAV container.
func EncodeWAV(pcm []byte, sampleRate int) []byte {
	const (
		numChannels   = 1
		bitsPerSample = 16
	)
	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

// DecodeWAV extracts PCM samples and the sample rate from a WAV container.
// Only PCM16 mono is accepted.
func DecodeWAV(wav []byte) ([]byte, int, error) {
	if len(wav) < 44 || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var (
		sampleRate    int
		numChannels   int
		bitsPerSample int
		pcm           []byte
	)

	// Walk the chunk list; fmt must precede data.
	pos := 12
	for pos+8 <= len(wav) {
		id := string(wav[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(wav) {
			size = len(wav) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			format := int(binary.LittleEndian.Uint16(wav[body : body+2]))
			numChannels = int(binary.LittleEndian.Uint16(wav[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(wav[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(wav[body+14 : body+16]))
			if format != 1 {
				return nil, 0, fmt.Errorf("unsupported WAV format code %d", format)
			}
		case "data":
			pcm = wav[body : body+size]
		}

		// Chunks are word-aligned.
		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}

	if sampleRate == 0 || pcm == nil {
		return nil, 0, fmt.Errorf("missing fmt or data chunk")
	}
	if numChannels != 1 || bitsPerSample != 16 {
		return nil, 0, fmt.Errorf("expected PCM16 mono, got %d channels %d bits", numChannels, bitsPerSample)
	}

	return pcm, sampleRate, nil
}

// RMS returns the root-mean-square energy of PCM16 samples, used to tell
// speech from background noise.
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(n))
}

// Resample converts PCM16 mono audio between sample rates using linear
// interpolation. Good enough for speech normalization.
func Resample(pcm []byte, fromRate, toRate int) []byte {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 {
		return pcm
	}

	srcN := len(pcm) / 2
	if srcN == 0 {
		return nil
	}
	dstN := int(int64(srcN) * int64(toRate) / int64(fromRate))

	out := make([]byte, dstN*2)
	ratio := float64(fromRate) / float64(toRate)
	for i := 0; i < dstN; i++ {
		pos := float64(i) * ratio
		j := int(pos)
		frac := pos - float64(j)

		a := int16(binary.LittleEndian.Uint16(pcm[j*2 : j*2+2]))
		b := a
		if j+1 < srcN {
			b = int16(binary.LittleEndian.Uint16(pcm[(j+1)*2 : (j+1)*2+2]))
		}

		sample := int16(float64(a) + (float64(b)-float64(a))*frac)
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], uint16(sample))
	}
	return out
}
