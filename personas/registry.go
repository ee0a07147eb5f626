// Package personas holds the chatbot personality registry. A persona is
// configuration data (prompt, knowledge, canned replies), never its own
// pipeline.
package personas

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/prushal/voicegate/adapters/retriever"
	"github.com/prushal/voicegate/domain/entities"
	"github.com/prushal/voicegate/domain/repositories"
	"github.com/prushal/voicegate/knowledge"
)

//go:embed data/*.json
var builtins embed.FS

// Runtime is a persona plus its loaded knowledge base and optional
// retrieval backend, ready for the resolver.
type Runtime struct {
	Persona   entities.Persona
	KB        *knowledge.Base
	Retriever repositories.Retriever
}

// Registry maps persona ids to runtimes. Read-only after construction.
type Registry struct {
	runtimes  map[string]*Runtime
	defaultID string
}

// Options configures registry construction.
type Options struct {
	// Dir overrides or extends the embedded personas with JSON files
	// from disk.
	Dir string

	// DefaultID selects the persona for sessions that never send
	// select_bot.
	DefaultID string

	// Embedder enables per-persona JSON-file retrieval backends.
	Embedder repositories.Embedder

	// SharedRetriever, when set, serves every persona that has a
	// retrieval file configured (e.g. a Qdrant collection).
	SharedRetriever repositories.Retriever
}

// NewRegistry loads embedded personas, then any from opts.Dir.
func NewRegistry(opts Options, logger *zap.Logger) (*Registry, error) {
	r := &Registry{runtimes: make(map[string]*Runtime)}

	entries, err := fs.ReadDir(builtins, "data")
	if err != nil {
		return nil, fmt.Errorf("failed to list builtin personas: %w", err)
	}
	for _, e := range entries {
		data, err := builtins.ReadFile("data/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read builtin persona %s: %w", e.Name(), err)
		}
		if err := r.add(data, opts, logger); err != nil {
			return nil, fmt.Errorf("builtin persona %s: %w", e.Name(), err)
		}
	}

	if opts.Dir != "" {
		files, err := filepath.Glob(filepath.Join(opts.Dir, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("failed to scan persona dir: %w", err)
		}
		for _, f := range files {
			data, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("failed to read persona %s: %w", f, err)
			}
			if err := r.add(data, opts, logger); err != nil {
				return nil, fmt.Errorf("persona %s: %w", f, err)
			}
		}
	}

	if len(r.runtimes) == 0 {
		return nil, fmt.Errorf("no personas loaded")
	}

	r.defaultID = opts.DefaultID
	if _, ok := r.runtimes[r.defaultID]; !ok {
		for id := range r.runtimes {
			r.defaultID = id
			break
		}
		logger.Warn("Configured default persona not found, picked another",
			zap.String("configured", opts.DefaultID),
			zap.String("picked", r.defaultID))
	}

	return r, nil
}

func (r *Registry) add(data []byte, opts Options, logger *zap.Logger) error {
	var p entities.Persona
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid persona JSON: %w", err)
	}
	if p.ID == "" {
		return fmt.Errorf("persona is missing an id")
	}

	entries := p.Knowledge
	if p.KnowledgeFile != "" {
		kb, err := knowledge.Load(p.KnowledgeFile)
		if err != nil {
			logger.Warn("Knowledge file unavailable, keeping inline entries only",
				zap.String("persona", p.ID),
				zap.String("file", p.KnowledgeFile),
				zap.Error(err))
		} else {
			entries = append(entries, kb.Entries()...)
		}
	}

	rt := &Runtime{
		Persona: p,
		KB:      knowledge.New(entries),
	}

	if p.RetrievalFile != "" {
		switch {
		case opts.SharedRetriever != nil:
			rt.Retriever = opts.SharedRetriever
		case opts.Embedder != nil:
			jr, err := retriever.NewJSONFile(p.RetrievalFile, opts.Embedder)
			if err != nil {
				logger.Warn("Retrieval file unavailable, disabling retrieval stage",
					zap.String("persona", p.ID),
					zap.String("file", p.RetrievalFile),
					zap.Error(err))
			} else {
				rt.Retriever = jr
			}
		}
	}

	r.runtimes[strings.ToLower(p.ID)] = rt
	return nil
}

// Get returns the runtime for a persona id, falling back to the default
// when the id is unknown.
func (r *Registry) Get(id string) *Runtime {
	if rt, ok := r.runtimes[strings.ToLower(id)]; ok {
		return rt
	}
	return r.runtimes[r.defaultID]
}

// Has reports whether a persona id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.runtimes[strings.ToLower(id)]
	return ok
}

// Default returns the default persona runtime.
func (r *Registry) Default() *Runtime {
	return r.runtimes[r.defaultID]
}

// IDs lists the registered persona ids.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.runtimes))
	for id := range r.runtimes {
		ids = append(ids, id)
	}
	return ids
}
