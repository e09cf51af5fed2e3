package telemetry

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/k1nk/qtyaccounting/output"
)

// TimingCollector collects hierarchical timing data.
// It builds a tree structure of timers that can be reported as a nested view.
type TimingCollector struct {
	mu    sync.Mutex
	roots []*timerNode
}

type timerNode struct {
	name     string
	start    time.Time
	duration time.Duration
	children []*timerNode
}

// NewTimingCollector creates a new timing collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

// Start begins timing an operation.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: time.Now()}
	c.roots = append(c.roots, node)
	return &timingTimer{collector: c, node: node}
}

// Report outputs the timing tree to a writer.
func (c *TimingCollector) Report(w io.Writer, stylesInterface interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	styles, _ := stylesInterface.(*output.Styles)
	for _, root := range c.roots {
		writeNode(w, root, 0, styles)
	}
}

// slowThreshold marks operations worth highlighting in the report.
const slowThreshold = 100 * time.Millisecond

func writeNode(w io.Writer, node *timerNode, depth int, styles *output.Styles) {
	indent := strings.Repeat("  ", depth)
	name := node.name
	timing := node.duration.Round(time.Microsecond).String()
	if styles != nil {
		if depth == 0 {
			name = styles.Keyword(name)
		}
		if node.duration >= slowThreshold {
			timing = styles.Warning(timing)
		} else {
			timing = styles.Dim(timing)
		}
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", indent, name, timing)
	for _, child := range node.children {
		writeNode(w, child, depth+1, styles)
	}
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

// End stops the timer.
func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	if t.node.duration == 0 {
		t.node.duration = time.Since(t.node.start)
	}
}

// Child creates a nested timer.
func (t *timingTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	node := &timerNode{name: name, start: time.Now()}
	t.node.children = append(t.node.children, node)
	return &timingTimer{collector: t.collector, node: node}
}
