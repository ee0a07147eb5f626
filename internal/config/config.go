package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds every runtime setting. It is constructed once in main and
// passed explicitly; nothing reads the environment at import time.
type Config struct {
	Port      string
	JWTSecret string

	// Comma-separated pools; rotation picks the next key on rate limits.
	OpenAIKeys   string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string

	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsModelID string

	// GOOGLE_APPLICATION_CREDENTIALS is picked up by the speech client
	// itself; we only gate on whether Google STT is enabled.
	GoogleSTTEnabled bool

	RedisAddr     string
	RedisPassword string

	MongoURI      string
	MongoDatabase string

	QdrantAddr       string
	QdrantCollection string

	PersonaDir     string
	DefaultPersona string

	// STT energy gate: RMS below this is treated as background noise.
	NoiseRMSThreshold float64
}

// Load builds a Config from VOICEGATE_* environment variables with defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VOICEGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("openai_keys", "")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("eleven_labs_api_key", "")
	v.SetDefault("eleven_labs_voice_id", "")
	v.SetDefault("eleven_labs_model_id", "")
	v.SetDefault("google_stt_enabled", false)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_database", "voicegate")
	v.SetDefault("qdrant_addr", "")
	v.SetDefault("qdrant_collection", "voicegate_qa")
	v.SetDefault("persona_dir", "")
	v.SetDefault("default_persona", "gmtt")
	v.SetDefault("noise_rms_threshold", 120.0)

	cfg := &Config{
		Port:              v.GetString("port"),
		JWTSecret:         v.GetString("jwt_secret"),
		OpenAIKeys:        v.GetString("openai_keys"),
		OpenAIModel:       v.GetString("openai_model"),
		GeminiAPIKey:      v.GetString("gemini_api_key"),
		GeminiModel:       v.GetString("gemini_model"),
		ElevenLabsAPIKey:  v.GetString("eleven_labs_api_key"),
		ElevenLabsVoiceID: v.GetString("eleven_labs_voice_id"),
		ElevenLabsModelID: v.GetString("eleven_labs_model_id"),
		GoogleSTTEnabled:  v.GetBool("google_stt_enabled"),
		RedisAddr:         v.GetString("redis_addr"),
		RedisPassword:     v.GetString("redis_password"),
		MongoURI:          v.GetString("mongo_uri"),
		MongoDatabase:     v.GetString("mongo_database"),
		QdrantAddr:        v.GetString("qdrant_addr"),
		QdrantCollection:  v.GetString("qdrant_collection"),
		PersonaDir:        v.GetString("persona_dir"),
		DefaultPersona:    v.GetString("default_persona"),
		NoiseRMSThreshold: v.GetFloat64("noise_rms_threshold"),
	}

	return cfg, nil
}

// OpenAIKeyList splits the configured key pool.
func (c *Config) OpenAIKeyList() []string {
	if c.OpenAIKeys == "" {
		return nil
	}
	parts := strings.Split(c.OpenAIKeys, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}
