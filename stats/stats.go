// Package stats reports the progress of an import to the log and as
// prometheus metrics.
package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osmwrangle/osmwrangle/element"
	"github.com/osmwrangle/osmwrangle/log"
	"github.com/osmwrangle/osmwrangle/shape"
)

type Progress struct {
	nodes     *RpsCounter
	ways      *RpsCounter
	relations *RpsCounter
	rows      *RpsCounter
	rejected  int64
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// Summary are the totals of a Progress.
type Summary struct {
	Nodes     int64 `json:"nodes"`
	Ways      int64 `json:"ways"`
	Relations int64 `json:"relations"`
	Rows      int64 `json:"rows"`
	Rejected  int64 `json:"rejected_tags"`
}

// NewProgress logs the counters every interval until Stop is called. A
// zero interval disables the logging.
func NewProgress(interval time.Duration) *Progress {
	p := &Progress{
		nodes:     NewRpsCounter(),
		ways:      NewRpsCounter(),
		relations: NewRpsCounter(),
		rows:      NewRpsCounter(),
		done:      make(chan struct{}),
	}
	if interval > 0 {
		p.wg.Add(1)
		go p.loop(interval)
	}
	return p
}

func (p *Progress) loop(interval time.Duration) {
	defer p.wg.Done()
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			p.tick()
			log.Printf("[progress] %s", p.line())
		case <-p.done:
			return
		}
	}
}

func (p *Progress) tick() {
	p.nodes.Tick()
	p.ways.Tick()
	p.relations.Tick()
	p.rows.Tick()
}

func (p *Progress) line() string {
	return fmt.Sprintf("Nodes: %7.0f/s (%9d) Ways: %7.0f/s (%8d) Relations: %6.0f/s (%7d) Rows: %8.0f/s (%10d)",
		p.nodes.LastRps(), p.nodes.Value(),
		p.ways.LastRps(), p.ways.Value(),
		p.relations.LastRps(), p.relations.Value(),
		p.rows.LastRps(), p.rows.Value(),
	)
}

func (p *Progress) AddElement(kind element.Kind) {
	switch kind {
	case element.NodeKind:
		p.nodes.Add(1)
	case element.WayKind:
		p.ways.Add(1)
	case element.RelationKind:
		p.relations.Add(1)
	}
	ElementsRead.WithLabelValues(kind.String()).Inc()
}

func (p *Progress) AddRows(kind shape.RowKind, n int) {
	p.rows.Add(n)
	RowsWritten.WithLabelValues(kind.Name()).Add(float64(n))
}

func (p *Progress) AddRejected(n int) {
	atomic.AddInt64(&p.rejected, int64(n))
	TagsRejected.Add(float64(n))
}

// Stop ends the logging and returns the totals.
func (p *Progress) Stop() Summary {
	p.stopOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
	return p.Summary()
}

func (p *Progress) Summary() Summary {
	return Summary{
		Nodes:     p.nodes.Value(),
		Ways:      p.ways.Value(),
		Relations: p.relations.Value(),
		Rows:      p.rows.Value(),
		Rejected:  atomic.LoadInt64(&p.rejected),
	}
}
