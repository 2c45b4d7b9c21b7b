package stats

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/osmwrangle/osmwrangle/element"
	"github.com/osmwrangle/osmwrangle/shape"
)

func TestRpsCounter(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRpsCounter()
	r.now = func() time.Time { return now }

	r.Tick()
	if r.LastRps() != 0 || r.Rps() != 0 {
		t.Error("rate without events")
	}

	r.Add(10)
	r.Add(0)
	r.Add(-5)
	now = now.Add(2 * time.Second)
	r.Tick()
	if r.Value() != 10 {
		t.Errorf("unexpected value %d", r.Value())
	}
	if r.LastRps() != 5 {
		t.Errorf("unexpected last rps %f", r.LastRps())
	}

	r.Add(30)
	now = now.Add(3 * time.Second)
	r.Tick()
	if r.LastRps() != 10 {
		t.Errorf("unexpected last rps %f", r.LastRps())
	}
	if r.Rps() != 8 {
		t.Errorf("unexpected rps %f", r.Rps())
	}
}

func TestProgress(t *testing.T) {
	before := testutil.ToFloat64(ElementsRead.WithLabelValues("way"))
	beforeRows := testutil.ToFloat64(RowsWritten.WithLabelValues("ways_nodes"))

	p := NewProgress(0)
	p.AddElement(element.NodeKind)
	p.AddElement(element.NodeKind)
	p.AddElement(element.WayKind)
	p.AddRows(shape.WayNodeRows, 3)
	p.AddRejected(2)
	s := p.Stop()
	p.Stop()

	want := Summary{Nodes: 2, Ways: 1, Rows: 3, Rejected: 2}
	if s != want {
		t.Errorf("%#v != %#v", s, want)
	}
	if d := testutil.ToFloat64(ElementsRead.WithLabelValues("way")) - before; d != 1 {
		t.Errorf("unexpected way metric delta %f", d)
	}
	if d := testutil.ToFloat64(RowsWritten.WithLabelValues("ways_nodes")) - beforeRows; d != 3 {
		t.Errorf("unexpected rows metric delta %f", d)
	}
}

func TestProgressLogs(t *testing.T) {
	p := NewProgress(time.Millisecond)
	p.AddElement(element.NodeKind)
	time.Sleep(5 * time.Millisecond)
	if s := p.Stop(); s.Nodes != 1 {
		t.Errorf("unexpected summary %#v", s)
	}
}
