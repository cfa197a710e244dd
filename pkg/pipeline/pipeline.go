// Package pipeline provides the layout pipeline shared by the CLI and the
// HTTP server.
//
// This package runs the parse → layout → render sequence for a process
// schema so every entry point behaves the same way and shares one cache.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: parse the schema, assign grid cells and write x/y onto nodes
//  2. Render: draw the laid-out schema as SVG, PNG or DOT
//
// Each stage can be run on its own or through [Runner.Execute].
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    Source:  "process.json",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("process.repositioned.json", result.Output, 0644)
//
// Run individual stages:
//
//	laid, err := runner.Layout(ctx, data, opts)
//	artifacts, err := runner.Render(ctx, laid, opts)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/render"
)

// DefaultSource names documents whose origin the caller did not give.
const DefaultSource = "input"

// validate checks layout.Config against its struct tags.
var validate = validator.New()

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Source names the document in logs, metrics and run history.
	Source string `json:"source,omitempty"`

	// Layout options
	Config     layout.Config `json:"config"`
	FirstStart bool          `json:"first_start,omitempty"`
	Refresh    bool          `json:"refresh,omitempty"` // Skip cache reads

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	TTL    time.Duration `json:"-"`
	Logger *log.Logger   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// LaidOut is the layout stage output: the repositioned document and
	// its layout report.
	*LaidOut

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Placed     int
	Warnings   int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is one of svg, png or dot.
func ValidateFormat(format string) error {
	_, err := render.ParseFormat(format)
	return err
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateConfig checks that spacing and footprints are usable.
func ValidateConfig(cfg layout.Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" must be "+fe.Tag()+" "+fe.Param())
			}
		} else {
			fields = append(fields, err.Error())
		}
		return errors.New(errors.ErrCodeInvalidConfig, "invalid layout config: %s", strings.Join(fields, "; "))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and checks the options for the full
// pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults fills in the zero config, source, TTL and logger.
func (o *Options) SetLayoutDefaults() {
	if o.Config == (layout.Config{}) {
		o.Config = layout.DefaultConfig()
	}
	if o.Source == "" {
		o.Source = DefaultSource
	}
	if o.TTL == 0 {
		o.TTL = cache.DefaultTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets layout defaults and validates the config.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return ValidateConfig(o.Config)
}

// ValidateForRender sets defaults and validates the requested formats.
// An empty format list is valid and renders nothing.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	formats := make([]string, 0, len(o.Formats))
	for _, f := range o.Formats {
		parsed, err := render.ParseFormat(f)
		if err != nil {
			return err
		}
		formats = append(formats, string(parsed))
	}
	o.Formats = formats
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Config:     o.Config,
		FirstStart: o.FirstStart,
	}
}

// RenderKeyOpts returns cache key options for one rendered format.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		LayoutKeyOpts: o.LayoutKeyOpts(),
		Format:        format,
		Detailed:      o.Detailed,
	}
}

// RenderOptions returns the options passed to the render package.
func (o *Options) RenderOptions() render.Options {
	return render.Options{Config: o.Config, Detailed: o.Detailed}
}
