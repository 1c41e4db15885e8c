package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"sync"

	"datastory/adapters/ingest"
	"datastory/domain/insight"
	"datastory/domain/story"
	"datastory/internal/analysis"
	"datastory/internal/prompt"
	"datastory/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// StoryService is the caller-facing pipeline entry point. Each call
// runs its own load-extract-build-narrate flow; the only shared state
// is the keyed result cache, which only ever serves an entry computed
// from the identical (table content, story config) pair.
type StoryService struct {
	loader    *ingest.Loader
	extractor *analysis.Extractor
	builder   *prompt.Builder
	narrator  ports.Narrator

	group      singleflight.Group
	cacheMu    sync.RWMutex
	cache      map[string]*story.Narrative
	CacheLimit int
}

// NewStoryService wires the pipeline with the given narrator and configs
func NewStoryService(narrator ports.Narrator, loaderConfig ingest.LoaderConfig, extractorConfig analysis.Config) *StoryService {
	return &StoryService{
		loader:     ingest.NewLoader(loaderConfig),
		extractor:  analysis.New(extractorConfig),
		builder:    prompt.NewBuilder(),
		narrator:   narrator,
		cache:      make(map[string]*story.Narrative),
		CacheLimit: 32,
	}
}

// ExtractInsights runs the analysis half of the pipeline: decode,
// coerce, extract. No narrative call is made.
func (s *StoryService) ExtractInsights(ctx context.Context, raw []byte) (*insight.Summary, error) {
	typed, err := s.loader.Load(raw)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(typed)
}

// GenerateStory runs the full pipeline and returns the validated
// narrative. Configuration is validated before any network activity.
// Identical (content, config) requests in flight are collapsed into one
// narrative call, and completed results are served from the cache.
func (s *StoryService) GenerateStory(ctx context.Context, raw []byte, config story.Config) (*story.Narrative, error) {
	typed, err := s.loader.Load(raw)
	if err != nil {
		return nil, err
	}

	summary, err := s.extractor.Extract(typed)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	promptText, _, err := s.builder.BuildPrompt(summary, config, requestID)
	if err != nil {
		return nil, err
	}

	key := cacheKey(typed.Fingerprint(), config)
	if narrative, ok := s.cached(key); ok {
		log.Printf("[StoryService] Cache hit for request %s", requestID)
		return narrative, nil
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		log.Printf("[StoryService] Generating story: request=%s, audience=%s", requestID, config.Audience)
		narrative, err := s.narrator.Narrate(ctx, promptText)
		if err != nil {
			return nil, err
		}
		s.store(key, narrative)
		return narrative, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*story.Narrative), nil
}

// cacheKey hashes the typed table fingerprint with the canonical config
// so distinct input files can never share an entry.
func cacheKey(fingerprint string, config story.Config) string {
	h := sha256.Sum256([]byte(fingerprint + "|" + config.CanonicalKey()))
	return hex.EncodeToString(h[:])
}

func (s *StoryService) cached(key string) (*story.Narrative, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	narrative, ok := s.cache[key]
	return narrative, ok
}

func (s *StoryService) store(key string, narrative *story.Narrative) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if len(s.cache) >= s.CacheLimit {
		// Simple reset beats an eviction policy at this scale.
		s.cache = make(map[string]*story.Narrative)
	}
	s.cache[key] = narrative
}
