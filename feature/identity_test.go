package feature

import (
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name             string
		feature          *Feature
		uniqueIDProperty string
		want             Identity
	}{
		{
			name:             "configured property",
			feature:          &Feature{Properties: map[string]interface{}{"id": "a"}},
			uniqueIDProperty: "id",
			want:             "a",
		},
		{
			name:             "configured property absent",
			feature:          &Feature{Properties: map[string]interface{}{"name": "x"}},
			uniqueIDProperty: "id",
			want:             Sentinel,
		},
		{
			name:             "top-level fallback",
			feature:          &Feature{ID: uint64(42), Properties: map[string]interface{}{"id": "a"}},
			uniqueIDProperty: "",
			want:             uint64(42),
		},
		{
			name:             "no property and no top-level id",
			feature:          &Feature{Properties: map[string]interface{}{"name": "x"}},
			uniqueIDProperty: "",
			want:             Sentinel,
		},
		{
			name:             "numeric property value",
			feature:          &Feature{Properties: map[string]interface{}{"cartodb_id": 7.0}},
			uniqueIDProperty: "cartodb_id",
			want:             7.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := RuleFor(tt.uniqueIDProperty)
			assert.Equal(t, tt.want, Resolve(tt.feature, rule))
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	f := &Feature{ID: "river-7", Properties: map[string]interface{}{"id": "a"}}
	for _, rule := range []IdentityRule{RuleFor("id"), RuleFor(""), NoIdentity()} {
		first := Resolve(f, rule)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Resolve(f, rule))
		}
	}
}

func TestResolve_NoIdentityRule(t *testing.T) {
	f := &Feature{ID: "present", Properties: map[string]interface{}{"id": "a"}}
	assert.Equal(t, Identity(Sentinel), Resolve(f, NoIdentity()))
}

func TestDefined(t *testing.T) {
	assert.True(t, Defined("a"))
	assert.True(t, Defined(uint64(0)))
	assert.False(t, Defined(Sentinel))
	assert.False(t, Defined(nil))
}

func TestResolve_NilPropertyValue(t *testing.T) {
	f := &Feature{
		Geometry:   geom.Point{0, 0},
		Properties: map[string]interface{}{"id": nil},
	}
	assert.Equal(t, Identity(Sentinel), Resolve(f, ByProperty("id")))
}
