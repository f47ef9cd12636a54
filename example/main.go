// FILE: lixenwraith/motherboard/example/main.go
package main

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-logr/logr/funcr"

	"github.com/lixenwraith/motherboard"
	"github.com/lixenwraith/motherboard/memhost"
)

const definition = `
[custom_properties]
builtin_onoffbypass = { tag = 1, default = 1 }
gain = 0.7

[cv_inputs.gain_cv]
connected = false
value = 0.0

[cv_outputs.gain_out]
connected = false
value = 0.0

[note_states]
`

// gainDevice scales a test tone by a fader gain that a CV input can take over,
// mirrors the gain on a CV output and prints incoming notes as MIDI.
type gainDevice struct {
	registry *motherboard.Registry
	onOff    *motherboard.OnOffBypass
	gain     *motherboard.Property[float32]
	gainCV   *motherboard.CVInSocket[float64]
	gainOut  *motherboard.CVOutSocket[float32]
	resolved *motherboard.CVOverride[float32, float64]
	notes    *motherboard.NoteQueue

	phase  float64
	output []float32
}

func newGainDevice(h motherboard.Host) (*gainDevice, error) {
	logger := funcr.New(func(prefix, args string) {
		fmt.Println("  [log]", prefix, args)
	}, funcr.Options{Verbosity: motherboard.LevelDebug})

	d := &gainDevice{
		registry: motherboard.NewRegistryWithOptions(motherboard.RegistryOptions{Logger: logger}),
		onOff:    motherboard.MustOnOffBypass(h),
		gain:     motherboard.MustProperty(h, "/custom_properties/gain", motherboard.ReadOnly(motherboard.VolumeCube)),
		gainCV:   motherboard.MustCVInSocket(h, "gain_cv", motherboard.Float64),
		gainOut:  motherboard.MustCVOutSocket(h, "gain_out", motherboard.Float32),
		notes:    motherboard.NewNoteQueue(0),
		output:   make([]float32, motherboard.BatchSize),
	}
	// CV readings use the same cubic curve as the fader.
	d.resolved = motherboard.NewMappedCVOverride(d.gain, d.gainCV, func(cv float64) float32 {
		return motherboard.VolumeCube.FromHost(motherboard.MakeNumber(cv))
	})

	for _, register := range []func(*motherboard.Registry) error{
		d.onOff.Register,
		d.gain.Register,
		d.gainCV.RegisterForUpdate,
		d.gainOut.RegisterForUpdate,
	} {
		if err := register(d.registry); err != nil {
			return nil, err
		}
	}
	notes, err := motherboard.NewNoteStates(h)
	if err != nil {
		return nil, err
	}
	d.registry.RegisterNoteStates(notes)

	d.registry.InitProperties()
	d.resolved.Init()
	d.gainOut.InitMotherboard(d.resolved.Value())
	return d, nil
}

func (d *gainDevice) RenderBatch(diffs []motherboard.Diff) {
	d.registry.OnUpdate(diffs)
	if d.resolved.AfterMotherboardUpdate() {
		d.gainOut.StoreOnUpdate(d.resolved.Value())
	}
	if d.registry.OnNotesUpdate(diffs, d.notes) {
		for ev, ok := d.notes.Pop(); ok; ev, ok = d.notes.Pop() {
			fmt.Printf("  note: %s -> midi % X\n", ev, ev.Message(0).Bytes())
		}
	}

	gain := d.resolved.Value()
	for i := range d.output {
		tone := float32(math.Sin(d.phase))
		d.phase += 2 * math.Pi * 440 / 48000
		switch {
		case d.onOff.IsOff():
			d.output[i] = 0
		case d.onOff.IsBypassed():
			d.output[i] = tone
		default:
			d.output[i] = tone * gain
		}
	}
}

func (d *gainDevice) peak() float32 {
	var p float32
	for _, s := range d.output {
		p = max(p, float32(math.Abs(float64(s))))
	}
	return p
}

func main() {
	h, err := memhost.Quick(definition)
	if err != nil {
		log.Fatalf("host: %v", err)
	}
	d, err := newGainDevice(h)
	if err != nil {
		log.Fatalf("device: %v", err)
	}
	outAddr, _ := h.Resolve("/cv_outputs/gain_out/value")

	steps := []struct {
		name  string
		stage func()
	}{
		{"idle", func() {}},
		{"fader to 0.35", func() { _ = h.Set("/custom_properties/gain", motherboard.MakeNumber(0.35)) }},
		{"CV connected at 0.7", func() {
			_ = h.Set("/cv_inputs/gain_cv/connected", motherboard.MakeBoolean(true))
			_ = h.Set("/cv_inputs/gain_cv/value", motherboard.MakeNumber(0.7))
		}},
		{"fader to 0.5 while CV connected", func() { _ = h.Set("/custom_properties/gain", motherboard.MakeNumber(0.5)) }},
		{"note on 60", func() { _ = h.SetNote(60, 100) }},
		{"bypass", func() { _ = h.Set(motherboard.OnOffBypassPath, motherboard.MakeNumber(float64(motherboard.StateBypassed))) }},
		{"CV disconnected, off", func() {
			_ = h.Set("/cv_inputs/gain_cv/connected", motherboard.MakeBoolean(false))
			_ = h.Set(motherboard.OnOffBypassPath, motherboard.MakeNumber(float64(motherboard.StateOff)))
		}},
	}

	for i, step := range steps {
		step.stage()
		fmt.Printf("block %d: %s\n", i, step.name)
		d.RenderBatch(h.Flush())
		fmt.Printf("  switch=%s gain=%.3f cv=%v peak=%.3f out=%s\n",
			d.onOff.Value(), d.resolved.Value(), d.resolved.IsCVConnected(), d.peak(), h.Load(outAddr))
	}

	fmt.Println("final host values:")
	if err := h.Dump(os.Stdout); err != nil {
		log.Fatalf("dump: %v", err)
	}
}
