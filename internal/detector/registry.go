package detector

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lexiscan/lexiscan/internal/domain"
	"github.com/lexiscan/lexiscan/internal/engine"
	"github.com/lexiscan/lexiscan/internal/logger"
	"github.com/lexiscan/lexiscan/internal/telemetry"
)

// Builtin returns the detector profiles shipped with the service.
func Builtin() []domain.DetectorProfile {
	return []domain.DetectorProfile{
		SpamProfile(),
		ToxicityProfile(),
		HarassmentProfile(),
		UrgencyProfile(),
		ClickbaitProfile(),
		AuthenticityProfile(),
	}
}

// Registry holds compiled engines keyed by detector name. Profiles compile
// once on registration; lookups are read-locked and cheap. Replacing a
// profile swaps in a freshly compiled engine atomically, so in-flight
// scoring runs keep the engine they started with.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*engine.Engine

	logger logger.Logger
	tp     *telemetry.Provider
}

// NewRegistry compiles the given profiles eagerly. Any configuration error
// fails the whole registry, so a bad profile is caught at startup rather
// than midway through a batch run.
func NewRegistry(log logger.Logger, tp *telemetry.Provider, profiles ...domain.DetectorProfile) (*Registry, error) {
	if log == nil {
		log = logger.NewNop()
	}
	r := &Registry{
		engines: make(map[string]*engine.Engine, len(profiles)),
		logger:  log,
		tp:      tp,
	}
	for _, p := range profiles {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register compiles a profile and adds or replaces it in the registry.
func (r *Registry) Register(profile domain.DetectorProfile) error {
	opts := []engine.Option{}
	if r.tp != nil {
		opts = append(opts, engine.WithTelemetry(r.tp))
	}
	eng, err := engine.New(profile, r.logger, opts...)
	if err != nil {
		if r.tp != nil {
			r.tp.RecordProfileCompile(false)
		}
		return fmt.Errorf("register detector %q: %w", profile.Name, err)
	}

	r.mu.Lock()
	r.engines[profile.Name] = eng
	count := len(r.engines)
	r.mu.Unlock()

	if r.tp != nil {
		r.tp.RecordProfileCompile(true)
		r.tp.SetProfilesLoaded(count)
	}
	r.logger.Info("detector registered",
		logger.String("detector", profile.Name),
		logger.Int("total", count),
	)
	return nil
}

// Remove drops a detector from the registry.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	delete(r.engines, name)
	count := len(r.engines)
	r.mu.Unlock()

	if r.tp != nil {
		r.tp.SetProfilesLoaded(count)
	}
	r.logger.Info("detector removed", logger.String("detector", name))
}

// Engine returns the compiled engine for a detector name.
func (r *Registry) Engine(name string) (*engine.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	eng, ok := r.engines[name]
	return eng, ok
}

// Names returns registered detector names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profiles returns copies of all registered profiles, sorted by name.
func (r *Registry) Profiles() []domain.DetectorProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profiles := make([]domain.DetectorProfile, 0, len(r.engines))
	for _, eng := range r.engines {
		profiles = append(profiles, eng.Profile())
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles
}

// Len returns the number of registered detectors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}
