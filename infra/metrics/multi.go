package metrics

import coremetrics "github.com/warebots/fleetsim/core/metrics"

// MultiSink fans records out to several sinks, returning the first error.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink combines sinks into one.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordTaskCompletion(records []coremetrics.TaskRecord) error {
	for _, s := range m.sinks {
		if err := s.RecordTaskCompletion(records); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordFleetState(rec coremetrics.FleetRecord) error {
	for _, s := range m.sinks {
		if err := s.RecordFleetState(rec); err != nil {
			return err
		}
	}
	return nil
}
