package metrics

// Wrapper adapts Metrics to the pipeline's Recorder interface. A nil
// wrapper or nil inner metrics is a no-op, so callers never need nil
// checks of their own.
type Wrapper struct {
	m *Metrics
}

// NewWrapper creates a wrapper around the given metrics.
func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) BatchScored(records int) {
	if w == nil || w.m == nil {
		return
	}
	w.m.BatchesScored.Inc()
	w.m.RecordsScored.Add(float64(records))
}

func (w *Wrapper) MetricsComputed() {
	if w == nil || w.m == nil {
		return
	}
	w.m.MetricsReports.Inc()
}

func (w *Wrapper) BatchFailed() {
	if w == nil || w.m == nil {
		return
	}
	w.m.BatchFailures.Inc()
}

func (w *Wrapper) ScoreDuration(seconds float64) {
	if w == nil || w.m == nil {
		return
	}
	w.m.ScoreDuration.Observe(seconds)
}

func (w *Wrapper) MetricsDuration(seconds float64) {
	if w == nil || w.m == nil {
		return
	}
	w.m.MetricsDuration.Observe(seconds)
}

func (w *Wrapper) DashboardPush(err error) {
	if w == nil || w.m == nil {
		return
	}
	if err != nil {
		w.m.DashboardErrors.Inc()
		return
	}
	w.m.DashboardPushes.Inc()
}
