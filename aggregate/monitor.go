package aggregate

import "github.com/poiesic/titlelens/core"

// Monitor observes the stages of a run.
type Monitor interface {
	Start(query string, mode core.Mode)
	AfterLookup(records []*core.Record)
	CacheHit(record *core.Record)
	CacheMiss(record *core.Record)
	RecordSkipped(record *core.Record)
	RowsEmitted(record *core.Record, groups []core.GroupID)
	Flushed(processed int)
	Finish(outcome *Outcome)
}

type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.Mode)                  {}
func (n *noopMonitor) AfterLookup(_ []*core.Record)                 {}
func (n *noopMonitor) CacheHit(_ *core.Record)                      {}
func (n *noopMonitor) CacheMiss(_ *core.Record)                     {}
func (n *noopMonitor) RecordSkipped(_ *core.Record)                 {}
func (n *noopMonitor) RowsEmitted(_ *core.Record, _ []core.GroupID) {}
func (n *noopMonitor) Flushed(_ int)                                {}
func (n *noopMonitor) Finish(_ *Outcome)                            {}
