package layer

import (
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/tilescope/tilescope/feature"
)

// Options configures a Layer.
type Options struct {
	// UniqueIDProperty names the feature property that carries the stable
	// identity. Empty means the top-level feature ID is used instead.
	UniqueIDProperty string

	// HighlightedFeatureID pins the highlight to one identity, nil for none.
	HighlightedFeatureID interface{}

	// AutoHighlight highlights the hovered feature in the render delegation.
	AutoHighlight bool

	// MinZoom and MaxZoom bound tile requests. Tile-index metadata can
	// narrow this range further but never widens it.
	MinZoom int `default:"0" validate:"min=0,max=30"`
	MaxZoom int `default:"30" validate:"min=0,max=30,gtefield=MinZoom"`

	// OnViewportChange is invoked on viewport-settle and when all selected
	// tiles have loaded.
	OnViewportChange func(ViewportChangeEvent)

	// OnError receives lifecycle errors, e.g. a failed metadata fetch.
	OnError func(error)
}

func (o *Options) setDefaultsAndValidate() error {
	if err := defaults.Set(o); err != nil {
		return err
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(o)
}

func (o *Options) identityRule() feature.IdentityRule {
	return feature.RuleFor(o.UniqueIDProperty)
}
