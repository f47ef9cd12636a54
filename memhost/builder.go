// File: lixenwraith/motherboard/memhost/builder.go
package memhost

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
)

// ValidatorFunc validates a built host. It receives the fully constructed host
// and should return an error if validation fails.
type ValidatorFunc func(h *Host) error

// Builder provides a fluent interface for building hosts
type Builder struct {
	def          *Definition
	file         string
	format       string
	values       string
	logger       logr.Logger
	initialBatch bool
	err          error
	validators   []ValidatorFunc
}

// NewBuilder creates a new host builder
func NewBuilder() *Builder {
	return &Builder{
		format:     FormatAuto,
		logger:     logr.Discard(),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithDefinition uses an already decoded definition
func (b *Builder) WithDefinition(def *Definition) *Builder {
	b.def = def
	return b
}

// WithDefinitionFile loads the definition from path at Build time
func (b *Builder) WithDefinitionFile(path string) *Builder {
	b.file = path
	return b
}

// WithFormat sets the definition file format, FormatAuto by default
func (b *Builder) WithFormat(format string) *Builder {
	if !validFormat(format) {
		b.err = fmt.Errorf("unsupported format %q", format)
		return b
	}
	b.format = format
	return b
}

// WithValuesFile stages the values of path so that the first Flush reports them
func (b *Builder) WithValuesFile(path string) *Builder {
	b.values = path
	return b
}

// WithLogger sets the host logger
func (b *Builder) WithLogger(logger logr.Logger) *Builder {
	b.logger = logger
	return b
}

// WithInitialBatch makes the first Flush report every declared property, the
// way a host delivers its first batch after instantiation.
func (b *Builder) WithInitialBatch(enabled bool) *Builder {
	b.initialBatch = enabled
	return b
}

// WithValidator adds a validation function that runs at the end of the build process.
// Validators run in the order they are added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Host with all specified options
func (b *Builder) Build() (*Host, error) {
	if b.err != nil {
		return nil, b.err
	}

	def := b.def
	if def == nil {
		if b.file == "" {
			return nil, fmt.Errorf("%w: no definition or definition file", ErrInvalidDefinition)
		}
		loaded, err := LoadDefinitionWithFormat(b.file, b.format)
		if err != nil {
			return nil, err
		}
		def = loaded
	}

	h, err := NewHost(def, b.logger)
	if err != nil {
		return nil, err
	}
	h.initialBatch = b.initialBatch

	if b.values != "" {
		values, err := LoadValues(b.values)
		if err != nil && !errors.Is(err, ErrFileNotFound) {
			return nil, err
		}
		if _, err := h.ApplyValues(values); err != nil {
			return nil, fmt.Errorf("failed to apply values: %w", err)
		}
	}

	for _, validator := range b.validators {
		if err := validator(h); err != nil {
			return nil, fmt.Errorf("host validation failed: %w", err)
		}
	}

	return h, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Host {
	h, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("host build failed: %v", err))
	}
	return h
}

// RequirePaths returns a validator checking that every path is declared.
func RequirePaths(paths ...string) ValidatorFunc {
	return func(h *Host) error {
		var errs []error
		for _, path := range paths {
			if _, err := h.Resolve(path); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
