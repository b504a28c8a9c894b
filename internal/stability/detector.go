package stability

// DefaultWindow is the number of identical consecutive live counts required
// before a board is considered stable.
const DefaultWindow = 20

// Detector classifies a board as stable once its total live-cell count has
// stayed the same for a full window of ticks.
type Detector struct {
	window int
	counts []int
	stable bool
}

// NewDetector returns a Detector with the given window size.
func NewDetector(window int) *Detector {
	if window < 1 {
		window = DefaultWindow
	}
	return &Detector{window: window, counts: make([]int, 0, window)}
}

// Observe records the live count of the latest tick and reports whether the
// board is now stable.
func (d *Detector) Observe(count int) bool {
	n := len(d.counts)
	if n == 0 || d.counts[n-1] != count {
		d.counts = append(d.counts[:0], count)
		d.stable = false
		return false
	}
	if len(d.counts) == d.window {
		copy(d.counts, d.counts[1:])
		d.counts = d.counts[:d.window-1]
	}
	d.counts = append(d.counts, count)
	if len(d.counts) == d.window && allEqual(d.counts) {
		d.stable = true
	}
	return d.stable
}

// Stable reports the current classification.
func (d *Detector) Stable() bool { return d.stable }

// Window returns the configured window size.
func (d *Detector) Window() int { return d.window }

// Reset forgets the recorded history.
func (d *Detector) Reset() {
	d.counts = d.counts[:0]
	d.stable = false
}

func allEqual(xs []int) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
