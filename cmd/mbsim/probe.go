// FILE: lixenwraith/motherboard/cmd/mbsim/probe.go
package main

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/go-logr/logr"

	"github.com/lixenwraith/motherboard"
	"github.com/lixenwraith/motherboard/memhost"
)

const customPropertiesPath = "/custom_properties"

type probeParam struct {
	prop     *motherboard.Property[float64]
	previous float64
}

type probeOverride struct {
	param    string
	socket   string
	override *motherboard.CVOverride[float64, float64]
}

// probe is a device observing every custom number property of a host, with
// optional CV overrides, logging what changes each block.
type probe struct {
	registry  *motherboard.Registry
	params    []*probeParam
	overrides []*probeOverride
	onOff     *motherboard.OnOffBypass
	state     motherboard.OnOffBypassState
	notes     *motherboard.NoteQueue
	channel   uint8

	clock   motherboard.Clock
	status  motherboard.RateLimiter
	blocks  int
	changes int
	events  int
	lost    int

	logger logr.Logger
}

func newProbe(h *memhost.Host, overrides map[string]string, s *Settings, logger logr.Logger) (*probe, error) {
	p := &probe{
		registry: motherboard.NewRegistryWithOptions(motherboard.RegistryOptions{Logger: logger}),
		channel:  uint8(motherboard.Clamp(s.Render.Channel, 0, 15)),
		clock:    motherboard.Clock{SampleRate: s.Render.SampleRate},
		logger:   logger.WithName("probe"),
	}
	p.status = p.clock.RateLimiter(time.Second)

	byName := make(map[string]*motherboard.Property[float64])
	if obj, ok := h.Definition().Object(customPropertiesPath); ok {
		for _, def := range obj.Properties {
			path := motherboard.JoinPropertyPath(obj.Path, def.Name)
			if path == motherboard.OnOffBypassPath || def.Kind != motherboard.KindNumber {
				continue
			}
			prop, err := motherboard.NewProperty(h, path, motherboard.ReadOnly(motherboard.Float64))
			if err != nil {
				return nil, err
			}
			if err := prop.Register(p.registry); err != nil {
				return nil, err
			}
			p.params = append(p.params, &probeParam{prop: prop})
			byName[def.Name] = prop
		}
	}

	for _, param := range slices.Sorted(maps.Keys(overrides)) {
		socket := overrides[param]
		base, ok := byName[param]
		if !ok {
			return nil, fmt.Errorf("%w: no number parameter %q to override", motherboard.ErrUnknownProperty, param)
		}
		cv, err := motherboard.NewCVInSocket(h, socket, motherboard.Float64)
		if err != nil {
			return nil, err
		}
		if err := cv.RegisterForUpdate(p.registry); err != nil {
			return nil, fmt.Errorf("socket %q: %w", socket, err)
		}
		p.overrides = append(p.overrides, &probeOverride{
			param:    param,
			socket:   socket,
			override: motherboard.NewCVOverride(base, cv),
		})
	}

	if _, err := h.Resolve(motherboard.OnOffBypassPath); err == nil {
		p.onOff = motherboard.MustOnOffBypass(h)
		if err := p.onOff.Register(p.registry); err != nil {
			return nil, err
		}
	}

	if notes, err := motherboard.NewNoteStates(h); err == nil {
		p.registry.RegisterNoteStates(notes)
		p.notes = motherboard.NewNoteQueue(motherboard.NoteCount)
	}

	p.registry.InitProperties()
	for _, param := range p.params {
		param.previous = param.prop.Value()
	}
	for _, o := range p.overrides {
		o.override.Init()
	}
	if p.onOff != nil {
		p.state = p.onOff.Value()
	}

	p.logger.Info("probe ready",
		"parameters", len(p.params), "overrides", len(p.overrides),
		"onOffBypass", p.onOff != nil, "notes", p.notes != nil, "registered", p.registry.Len())
	return p, nil
}

// RenderBatch implements motherboard.Device.
func (p *probe) RenderBatch(diffs []motherboard.Diff) {
	p.blocks++
	if !p.registry.OnUpdate(diffs) && p.notes == nil {
		p.tick()
		return
	}

	for _, param := range p.params {
		previous := param.previous
		if param.prop.UpdatePreviousOnChange(&param.previous) {
			p.changes++
			p.logger.Info("parameter changed", "path", param.prop.Path(), "from", previous, "to", param.previous)
		}
	}
	for _, o := range p.overrides {
		if o.override.AfterMotherboardUpdate() {
			p.logger.Info("resolved value changed",
				"param", o.param, "socket", o.socket, "value", o.override.Value(), "cvConnected", o.override.IsCVConnected())
		}
	}
	if p.onOff != nil && motherboard.UpdatePreviousValueOnChange(p.onOff.Value(), &p.state) {
		p.logger.Info("switch changed", "state", p.state)
	}

	if p.notes != nil && p.registry.OnNotesUpdate(diffs, p.notes) {
		for {
			ev, ok := p.notes.Pop()
			if !ok {
				break
			}
			p.events++
			p.logger.Info("note", "event", ev, "midi", ev.Message(p.channel).String())
		}
		if lost := p.notes.Lost(); lost > p.lost {
			p.logger.Info("note events dropped", "lost", lost-p.lost)
			p.lost = lost
		}
	}
	p.tick()
}

func (p *probe) tick() {
	if p.status.ShouldUpdate(motherboard.BatchSize) {
		p.logger.V(1).Info("status", "blocks", p.blocks,
			"elapsed", p.clock.DurationFor(uint32(p.blocks*motherboard.BatchSize)),
			"changes", p.changes, "notes", p.events)
	}
}

// resolved returns the current resolved value of each override, by parameter.
func (p *probe) resolved() map[string]float64 {
	values := make(map[string]float64, len(p.overrides))
	for _, o := range p.overrides {
		values[o.param] = o.override.Value()
	}
	return values
}
