package stt

// Sentinel strings signal STT failures through the text channel so the
// transport can route them as status, never as user speech.
const (
	SentinelNoAudio      = "[No audio detected]"
	SentinelNoise        = "[Heard Noise]"
	SentinelUnrecognized = "[Unrecognized Speech]"
	SentinelServiceError = "[STT Service Error]"
)

var sentinels = map[string]bool{
	SentinelNoAudio:      true,
	SentinelNoise:        true,
	SentinelUnrecognized: true,
	SentinelServiceError: true,
}

// IsSentinel reports whether text is a reserved STT status string.
func IsSentinel(text string) bool {
	return sentinels[text]
}
