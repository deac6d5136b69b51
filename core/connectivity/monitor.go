package connectivity

import "sync"

// EffectiveType mirrors the platform's coarse connection classification.
type EffectiveType string

const (
	TypeSlow2G  EffectiveType = "slow-2g"
	Type2G      EffectiveType = "2g"
	Type3G      EffectiveType = "3g"
	Type4G      EffectiveType = "4g"
	TypeUnknown EffectiveType = "unknown"
)

type Quality int

const (
	QualityOffline Quality = iota
	QualityPoor
	QualityFair
	QualityGood
)

func (q Quality) String() string {
	switch q {
	case QualityOffline:
		return "offline"
	case QualityPoor:
		return "poor"
	case QualityFair:
		return "fair"
	default:
		return "good"
	}
}

// State is the latest connectivity telemetry. Not persisted; rebuilt each run.
type State struct {
	IsOnline      bool
	EffectiveType EffectiveType
	DownlinkMbps  float64
	RTTms         int
}

// Quality derives the connection quality. Pure; recomputed on every call.
func (s State) Quality() Quality {
	switch {
	case !s.IsOnline:
		return QualityOffline
	case s.EffectiveType == TypeSlow2G || s.EffectiveType == Type2G:
		return QualityPoor
	case s.EffectiveType == Type3G:
		return QualityFair
	case s.EffectiveType == Type4G && s.DownlinkMbps < 1.5:
		return QualityFair
	default:
		return QualityGood
	}
}

// DefaultState is the optimistic assumption used when no telemetry is
// available: the system must never block on absent platform signals.
var DefaultState = State{
	IsOnline:      true,
	EffectiveType: Type4G,
	DownlinkMbps:  10,
	RTTms:         100,
}

type Listener func(prev, curr State)

// Monitor tracks connectivity and fans state changes out to listeners.
// Mutated only via SetState; read from any goroutine.
type Monitor struct {
	mu        sync.RWMutex
	state     State
	listeners []Listener
}

func NewMonitor(initial ...State) *Monitor {
	st := DefaultState
	if len(initial) > 0 {
		st = initial[0]
	}
	return &Monitor{state: st}
}

func (m *Monitor) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Monitor) Quality() Quality {
	return m.Current().Quality()
}

// SetState records new telemetry and notifies listeners if anything changed.
// Listeners run on the caller's goroutine, outside the lock.
func (m *Monitor) SetState(st State) {
	if st.EffectiveType == "" {
		st.EffectiveType = TypeUnknown
	}

	m.mu.Lock()
	prev := m.state
	if st == prev {
		m.mu.Unlock()
		return
	}
	m.state = st
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, l := range listeners {
		l(prev, st)
	}
}

// SetOnline flips only the online flag, keeping the last known telemetry.
func (m *Monitor) SetOnline(online bool) {
	st := m.Current()
	st.IsOnline = online
	m.SetState(st)
}

func (m *Monitor) OnChange(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// CanStreamVideo reports whether the connection is fast enough for video.
func (m *Monitor) CanStreamVideo() bool {
	st := m.Current()
	q := st.Quality()
	return q == QualityGood || (q == QualityFair && st.DownlinkMbps > 1)
}

// CanLoadImages reports whether the connection is fast enough for images.
func (m *Monitor) CanLoadImages() bool {
	q := m.Quality()
	return q != QualityOffline && q != QualityPoor
}

// RecommendedQuality suggests a content tier for the current connection.
func (m *Monitor) RecommendedQuality() string {
	switch m.Quality() {
	case QualityPoor:
		return "text-only"
	case QualityFair:
		return "low-images"
	case QualityGood:
		return "full-quality"
	default:
		return "offline"
	}
}

// mbPerUnit estimates data usage in MB per minute (or per item for
// images and quizzes).
var mbPerUnit = map[string]float64{
	"text":         0.001,
	"image":        0.5,
	"video-low":    5,
	"video-medium": 15,
	"video-high":   25,
	"quiz":         0.01,
}

func EstimateDataUsage(contentType string, units float64) float64 {
	return mbPerUnit[contentType] * units
}
