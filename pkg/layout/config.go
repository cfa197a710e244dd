package layout

// Default spacing and shape sizes, in pixels.
const (
	DefaultBaseX             = 500.0
	DefaultBaseY             = 100.0
	DefaultVerticalSpacing   = 200.0
	DefaultHorizontalSpacing = 300.0
	DefaultCenterOffset      = 100.0

	DefaultCenterPivotFootprint = 56.0
	DefaultStandardFootprint    = 200.0
	DefaultStandardHeight       = 100.0
	DefaultConditionFootprint   = 200.0
	DefaultConditionHeight      = 110.0
)

// Config holds the grid-to-pixel constants.
//
// BaseX and BaseY place cell (0, 0). CenterOffset is added to the x of
// center-pivot nodes (start, end). The footprint fields describe shape sizes
// and are used when rendering.
type Config struct {
	BaseX             float64 `json:"base_x" toml:"base_x" yaml:"base_x"`
	BaseY             float64 `json:"base_y" toml:"base_y" yaml:"base_y"`
	VerticalSpacing   float64 `json:"vertical_spacing" toml:"vertical_spacing" yaml:"vertical_spacing" validate:"gt=0"`
	HorizontalSpacing float64 `json:"horizontal_spacing" toml:"horizontal_spacing" yaml:"horizontal_spacing" validate:"gt=0"`
	CenterOffset      float64 `json:"center_offset" toml:"center_offset" yaml:"center_offset" validate:"gte=0"`

	CenterPivotFootprint float64 `json:"center_pivot_footprint" toml:"center_pivot_footprint" yaml:"center_pivot_footprint" validate:"gt=0"`
	StandardFootprint    float64 `json:"standard_footprint" toml:"standard_footprint" yaml:"standard_footprint" validate:"gt=0"`
	StandardHeight       float64 `json:"standard_height" toml:"standard_height" yaml:"standard_height" validate:"gt=0"`
	ConditionFootprint   float64 `json:"condition_footprint" toml:"condition_footprint" yaml:"condition_footprint" validate:"gt=0"`
	ConditionHeight      float64 `json:"condition_height" toml:"condition_height" yaml:"condition_height" validate:"gt=0"`
}

// DefaultConfig returns the stock spacing: a 300x200 grid anchored at
// (500, 100), with round shapes shifted 100px right.
func DefaultConfig() Config {
	return Config{
		BaseX:                DefaultBaseX,
		BaseY:                DefaultBaseY,
		VerticalSpacing:      DefaultVerticalSpacing,
		HorizontalSpacing:    DefaultHorizontalSpacing,
		CenterOffset:         DefaultCenterOffset,
		CenterPivotFootprint: DefaultCenterPivotFootprint,
		StandardFootprint:    DefaultStandardFootprint,
		StandardHeight:       DefaultStandardHeight,
		ConditionFootprint:   DefaultConditionFootprint,
		ConditionHeight:      DefaultConditionHeight,
	}
}
