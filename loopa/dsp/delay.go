package dsp

// Delay is a feedback delay line over a fixed backing array. The line in
// use is the circular window [start, end] of the array, so the delay time
// can be changed at runtime without reallocating: Resize only moves the
// window edges. Each sample reads the delayed value at the cursor, writes
// back dry + delayed*feedback, and mixes dry against the new wet value.
type Delay struct {
	line  []float32
	start int
	end   int
	idx   int

	feedback float32
	wet      float32
}

var _ Filter = (*Delay)(nil)

// NewDelay builds a delay line of sampleCount samples. feedback and wet
// must be in [0, 1]; the constructor panics otherwise.
func NewDelay(sampleCount int, feedback, wet float32) *Delay {
	if feedback < 0 || feedback > 1 {
		panic("dsp: delay feedback must be in [0, 1]")
	}
	if wet < 0 || wet > 1 {
		panic("dsp: delay wet must be in [0, 1]")
	}
	end := sampleCount - 1
	if end < 0 {
		end = 0
	}
	return &Delay{
		line:     make([]float32, sampleCount),
		end:      end,
		feedback: feedback,
		wet:      wet,
	}
}

// Length reports the number of samples currently in the logical window.
func (d *Delay) Length() int {
	if len(d.line) == 0 {
		return 0
	}
	if d.end >= d.start {
		return d.end - d.start + 1
	}
	return len(d.line) - d.start + d.end + 1
}

// Capacity reports the size of the backing array, the longest delay
// Resize can reach.
func (d *Delay) Capacity() int {
	return len(d.line)
}

// Reset zeroes the line and re-bases the window at the start of the
// backing array, keeping the current length. Expect an audible click.
func (d *Delay) Reset() {
	for i := range d.line {
		d.line[i] = 0
	}
	length := d.Length()
	d.idx = 0
	d.start = 0
	d.end = length - 1
	if d.end < 0 {
		d.end = 0
	}
}

// Resize changes the logical delay length without touching the backing
// array. Shrinking advances the window start; growing advances the window
// end, saturating at the array capacity.
func (d *Delay) Resize(sampleCount int) {
	current := d.Length()
	if sampleCount == current || len(d.line) == 0 {
		return
	}

	if sampleCount < current {
		d.start += current - sampleCount
		if d.start >= len(d.line) {
			d.start -= len(d.line)
		}
		return
	}

	target := sampleCount
	if target > len(d.line) {
		target = len(d.line)
	}
	if target == current {
		return
	}
	d.end += target - current
	if d.end >= len(d.line) {
		d.end -= len(d.line)
	}
}

// Apply runs one sample through the delay line.
func (d *Delay) Apply(dry float32) float32 {
	if len(d.line) == 0 {
		return dry
	}
	delayed := d.line[d.idx]
	wet := dry + delayed*d.feedback
	d.line[d.idx] = wet
	if d.idx == d.end {
		d.idx = d.start
	} else {
		d.idx++
		if d.idx >= len(d.line) {
			d.idx = 0
		}
	}
	return dry*(1-d.wet) + wet*d.wet
}
