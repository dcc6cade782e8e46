package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-loopa/loopa"
)

func TestHeadlessDrivesEngine(t *testing.T) {
	ctl := loopa.NewControl()
	engine := loopa.New(ctl, loopa.Config{SampleRate: 8000})
	driver := NewHeadless(engine, 400)

	ctl.Enabled.Store(true)
	ctl.MilliBPM.Store(120000)

	// Two seconds of blocks: the transport should land on beat 4.
	driver.RunBlocks(40)
	assert.Equal(t, uint32(4), ctl.CurrentMillibeat.Load()/1000)
}

func TestHeadlessFillInput(t *testing.T) {
	ctl := loopa.NewControl()
	engine := loopa.New(ctl, loopa.Config{SampleRate: 8000})
	driver := NewHeadless(engine, 400)

	ctl.Enabled.Store(true)
	filled := 0
	driver.FillInput = func(block []float32) {
		filled++
		for i := range block {
			block[i] = 0.5
		}
	}
	driver.RunBlocks(3)
	assert.Equal(t, 3, filled)
	assert.NotZero(t, len(driver.LastOutput()))
}

func TestHeadlessDisabledProducesSilence(t *testing.T) {
	ctl := loopa.NewControl()
	engine := loopa.New(ctl, loopa.Config{SampleRate: 8000})
	driver := NewHeadless(engine, 128)

	driver.FillInput = func(block []float32) {
		for i := range block {
			block[i] = 0.9
		}
	}
	driver.RunBlocks(2)
	for i, s := range driver.LastOutput() {
		assert.Equal(t, float32(0), s, "sample %d", i)
	}
}
