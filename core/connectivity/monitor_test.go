package connectivity

import "testing"

func TestState_Quality(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Quality
	}{
		{name: "offline wins regardless of telemetry", state: State{IsOnline: false, EffectiveType: Type4G, DownlinkMbps: 50}, want: QualityOffline},
		{name: "slow-2g is poor", state: State{IsOnline: true, EffectiveType: TypeSlow2G}, want: QualityPoor},
		{name: "2g is poor", state: State{IsOnline: true, EffectiveType: Type2G, DownlinkMbps: 0.3}, want: QualityPoor},
		{name: "3g is fair", state: State{IsOnline: true, EffectiveType: Type3G, DownlinkMbps: 2}, want: QualityFair},
		{name: "4g with low downlink is fair", state: State{IsOnline: true, EffectiveType: Type4G, DownlinkMbps: 0.5}, want: QualityFair},
		{name: "4g is good", state: State{IsOnline: true, EffectiveType: Type4G, DownlinkMbps: 10}, want: QualityGood},
		{name: "unknown type online is good", state: State{IsOnline: true, EffectiveType: TypeUnknown}, want: QualityGood},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Quality(); got != tt.want {
				t.Errorf("Quality() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonitor_defaultsOptimistic(t *testing.T) {
	m := NewMonitor()
	st := m.Current()
	if !st.IsOnline || st.EffectiveType != Type4G {
		t.Errorf("Current() = %+v, want optimistic default", st)
	}
	if q := m.Quality(); q != QualityGood {
		t.Errorf("Quality() = %v, want good", q)
	}
}

func TestMonitor_OnChange(t *testing.T) {
	m := NewMonitor()

	var events []struct{ prev, curr State }
	m.OnChange(func(prev, curr State) {
		events = append(events, struct{ prev, curr State }{prev, curr})
	})

	m.SetOnline(false)
	m.SetOnline(false) // no change, no event
	m.SetState(State{IsOnline: true, EffectiveType: Type3G, DownlinkMbps: 2, RTTms: 300})

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].prev.IsOnline != true || events[0].curr.IsOnline != false {
		t.Errorf("event 0 = %+v, want online->offline", events[0])
	}
	if events[1].curr.Quality() != QualityFair {
		t.Errorf("event 1 quality = %v, want fair", events[1].curr.Quality())
	}
}

func TestMonitor_SetState_fillsUnknownType(t *testing.T) {
	m := NewMonitor()
	m.SetState(State{IsOnline: true})
	if got := m.Current().EffectiveType; got != TypeUnknown {
		t.Errorf("EffectiveType = %q, want %q", got, TypeUnknown)
	}
}

func TestMonitor_streamingHeuristics(t *testing.T) {
	m := NewMonitor()

	m.SetState(State{IsOnline: true, EffectiveType: Type3G, DownlinkMbps: 2})
	if !m.CanStreamVideo() {
		t.Error("CanStreamVideo() = false on fair connection with downlink > 1")
	}
	if !m.CanLoadImages() {
		t.Error("CanLoadImages() = false on fair connection")
	}

	m.SetState(State{IsOnline: true, EffectiveType: Type2G, DownlinkMbps: 0.2})
	if m.CanStreamVideo() {
		t.Error("CanStreamVideo() = true on poor connection")
	}
	if m.CanLoadImages() {
		t.Error("CanLoadImages() = true on poor connection")
	}
	if got := m.RecommendedQuality(); got != "text-only" {
		t.Errorf("RecommendedQuality() = %q, want text-only", got)
	}
}
