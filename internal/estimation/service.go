package estimation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

// Loader 데이터셋 로더 인터페이스
type Loader interface {
	Name() string
	Load(ctx context.Context) ([]contracts.RawListing, error)
}

// ModelEvent is published after a new model replaced the previous one.
type ModelEvent struct {
	Version         string    `json:"version"`
	PreviousVersion string    `json:"previous_version,omitempty"`
	TrainedAt       time.Time `json:"trained_at"`
	Records         int       `json:"records"`
	Columns         int       `json:"columns"`
	Duration        string    `json:"duration"`
}

// Service 추정 서비스
// 현재 모델은 atomic pointer로 보관되고, 재학습은 별도로 만든 뒤 교체함
type Service struct {
	opts    Options
	current atomic.Pointer[TrainedModel]
	retrain sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]chan ModelEvent
	nextSub int

	log zerolog.Logger
}

// NewService 새 서비스 생성 (모델 없음)
func NewService(opts Options, log zerolog.Logger) *Service {
	return &Service{
		opts: opts,
		subs: make(map[int]chan ModelEvent),
		log:  log.With().Str("component", "estimation.service").Logger(),
	}
}

// Current returns the model in service, or nil before the first successful refresh.
func (s *Service) Current() *TrainedModel {
	return s.current.Load()
}

// Options returns the training options.
func (s *Service) Options() Options {
	return s.opts
}

// Refresh retrains when the dataset fingerprint differs from the current model's version.
// On failure the previous model stays in service. Reports whether a swap happened.
func (s *Service) Refresh(ctx context.Context, raw []contracts.RawListing) (bool, error) {
	version, err := Fingerprint(raw)
	if err != nil {
		return false, err
	}

	s.retrain.Lock()
	defer s.retrain.Unlock()

	prev := s.current.Load()
	if prev != nil && prev.version == version {
		s.log.Debug().Str("version", short(version)).Msg("dataset unchanged, keeping model")
		return false, nil
	}

	start := time.Now()
	tm, err := train(ctx, raw, version, s.opts)
	if err != nil {
		s.log.Error().Err(err).Int("rows", len(raw)).Msg("retrain failed, keeping previous model")
		return false, err
	}
	s.current.Store(tm)

	ev := ModelEvent{
		Version:   tm.version,
		TrainedAt: tm.trainedAt,
		Records:   len(tm.records),
		Columns:   tm.Space().Len(),
		Duration:  time.Since(start).Round(time.Millisecond).String(),
	}
	if prev != nil {
		ev.PreviousVersion = prev.version
	}

	s.log.Info().
		Str("version", short(tm.version)).
		Int("input", tm.report.Input).
		Int("kept", tm.report.Kept).
		Int("bad_room_count", tm.report.BadRoomCount).
		Int("missing_area", tm.report.MissingArea).
		Int("missing_price", tm.report.MissingPrice).
		Int("missing_location", tm.report.MissingLocation).
		Int("columns", ev.Columns).
		Str("duration", ev.Duration).
		Msg("model trained")

	s.publish(ev)
	return true, nil
}

// Reload loads the dataset from a loader and refreshes with it.
func (s *Service) Reload(ctx context.Context, loader Loader) (bool, error) {
	raw, err := loader.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("reload from %s: %w", loader.Name(), err)
	}
	return s.Refresh(ctx, raw)
}

// Estimate reads one model snapshot and uses it for the whole call.
// The snapshot is returned so callers can report its version and look up similar listings.
func (s *Service) Estimate(q contracts.Query) (float64, *TrainedModel, error) {
	tm := s.current.Load()
	if tm == nil {
		return 0, nil, contracts.ErrNoModel
	}
	price, err := Estimate(tm, q)
	if err != nil {
		return 0, tm, err
	}
	return price, tm, nil
}

// Subscribe registers for model events. Slow subscribers miss events rather than block
// a refresh. Call the returned function to unsubscribe.
func (s *Service) Subscribe(buffer int) (<-chan ModelEvent, func()) {
	ch := make(chan ModelEvent, max(buffer, 1))

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

func (s *Service) publish(ev ModelEvent) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.log.Warn().Int("subscriber", id).Msg("model event dropped")
		}
	}
}

func short(version string) string {
	if len(version) > 12 {
		return version[:12]
	}
	return version
}
