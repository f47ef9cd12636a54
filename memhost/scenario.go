// FILE: lixenwraith/motherboard/memhost/scenario.go
package memhost

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/lixenwraith/motherboard"
)

// Block is one scripted host batch: values and note events staged together,
// repeated Repeat times (unchanged repeats render as empty batches).
type Block struct {
	Values Values
	Notes  map[int]int // note -> velocity, 0 is note-off
	Repeat int
}

// Scenario is an ordered list of host batches.
//
//	[[blocks]]
//	set = { "/custom_properties/gain" = 0.5 }
//
//	[[blocks]]
//	set = { "/cv_inputs/gain_cv/connected" = true, "/cv_inputs/gain_cv/value" = 0.8 }
//	notes = { "60" = 100 }
//	repeat = 4
type Scenario struct {
	Blocks []Block
}

type rawScenario struct {
	Blocks []rawBlock `mapstructure:"blocks"`
}

type rawBlock struct {
	Set    map[string]any `mapstructure:"set"`
	Notes  map[string]int `mapstructure:"notes"`
	Repeat int            `mapstructure:"repeat"`
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	nested, err := readFile(path, FormatAuto)
	if err != nil {
		return nil, err
	}
	return buildScenario(nested)
}

// ParseScenario decodes a scenario from data.
func ParseScenario(data []byte, format string) (*Scenario, error) {
	nested, err := parseData(data, format)
	if err != nil {
		return nil, err
	}
	return buildScenario(nested)
}

func buildScenario(nested map[string]any) (*Scenario, error) {
	var raw rawScenario
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(nested); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	s := &Scenario{Blocks: make([]Block, 0, len(raw.Blocks))}
	var errs []error
	for i, rb := range raw.Blocks {
		block := Block{Values: make(Values), Notes: make(map[int]int, len(rb.Notes)), Repeat: max(rb.Repeat, 1)}
		for key, value := range rb.Set {
			path := "/" + strings.TrimPrefix(key, "/")
			flat := map[string]any{path: value}
			if sub, isMap := value.(map[string]any); isMap {
				flat = flattenMap(sub, path)
			}
			for p, rv := range flat {
				v, err := toValue(rv)
				if err != nil {
					errs = append(errs, fmt.Errorf("block %d: %s: %w", i, p, err))
					continue
				}
				block.Values[p] = v
			}
		}
		for key, velocity := range rb.Notes {
			note, err := strconv.Atoi(key)
			if err != nil {
				errs = append(errs, fmt.Errorf("block %d: note %q: %w", i, key, err))
				continue
			}
			block.Notes[note] = velocity
		}
		s.Blocks = append(s.Blocks, block)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// Len returns the number of batches including repeats.
func (s *Scenario) Len() int {
	n := 0
	for _, b := range s.Blocks {
		n += b.Repeat
	}
	return n
}

// Stage stages the block's values and notes on the host, notes in ascending
// order after the values.
func (h *Host) Stage(b Block) error {
	var errs []error
	for _, path := range b.Values.Paths() {
		if err := h.Set(path, b.Values[path]); err != nil {
			errs = append(errs, err)
		}
	}
	for _, note := range slices.Sorted(maps.Keys(b.Notes)) {
		if err := h.SetNote(note, b.Notes[note]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Play stages every batch of s in turn and hands each flushed batch to d.
// It stops at the first staging error.
func (h *Host) Play(s *Scenario, d motherboard.Device) error {
	for i, b := range s.Blocks {
		for range b.Repeat {
			if err := h.Stage(b); err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
			d.RenderBatch(h.Flush())
		}
	}
	return nil
}
