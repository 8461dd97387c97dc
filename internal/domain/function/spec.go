package function

import (
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// SpotSpec describes one activity spot relative to the building centre
type SpotSpec struct {
	Name     string
	Position shared.LocalPosition
}

// ResourceRate is a resource flow in kg per millisol
type ResourceRate struct {
	Resource resource.ID
	Rate     float64
}

// ResourceProcessSpec is a continuous conversion recipe run by waste processing
type ResourceProcessSpec struct {
	Name          string
	Inputs        []ResourceRate
	Outputs       []ResourceRate
	PowerRequired float64
	DefaultOn     bool
}

// Spec is the static configuration of one function of one building type.
// Catalog loaders fill it; constructors read typed properties from it.
type Spec struct {
	Type          Type
	TechLevel     int
	Capacity      int
	Properties    map[string]interface{}
	ActivitySpots []SpotSpec
	Capacities    map[resource.ID]float64
	InitialStock  map[resource.ID]float64
	Processes     []ResourceProcessSpec
}

// DoubleProperty reads a numeric property, falling back to def when absent
func (s Spec) DoubleProperty(name string, def float64) (float64, error) {
	v, ok := s.Properties[name]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, shared.NewValidationError(name, fmt.Sprintf("expected a number, got %T", v))
}

// IntProperty reads an integral property, falling back to def when absent
func (s Spec) IntProperty(name string, def int) (int, error) {
	v, ok := s.Properties[name]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, shared.NewValidationError(name, fmt.Sprintf("expected an integer, got %v", v))
}

// BoolProperty reads a boolean property, falling back to def when absent
func (s Spec) BoolProperty(name string, def bool) (bool, error) {
	v, ok := s.Properties[name]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, shared.NewValidationError(name, fmt.Sprintf("expected a boolean, got %T", v))
	}
	return b, nil
}

// StringListProperty reads a list of strings, e.g. research specialties
func (s Spec) StringListProperty(name string) ([]string, error) {
	v, ok := s.Properties[name]
	if !ok {
		return nil, nil
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			str, ok := item.(string)
			if !ok {
				return nil, shared.NewValidationError(name, fmt.Sprintf("expected strings, got %T", item))
			}
			out = append(out, str)
		}
		return out, nil
	}
	return nil, shared.NewValidationError(name, fmt.Sprintf("expected a list, got %T", v))
}

// PositionProperty reads an {x, y} position property
func (s Spec) PositionProperty(name string) (shared.LocalPosition, bool, error) {
	v, ok := s.Properties[name]
	if !ok {
		return shared.LocalPosition{}, false, nil
	}
	switch p := v.(type) {
	case shared.LocalPosition:
		return p, true, nil
	case map[string]interface{}:
		x, xok := toFloat(p["x"])
		y, yok := toFloat(p["y"])
		if xok && yok {
			return shared.NewLocalPosition(x, y), true, nil
		}
	}
	return shared.LocalPosition{}, false, shared.NewValidationError(name, "expected a position with x and y")
}

// PositionListProperty reads a list of {x, y} positions, e.g. parking spots
func (s Spec) PositionListProperty(name string) ([]shared.LocalPosition, error) {
	v, ok := s.Properties[name]
	if !ok {
		return nil, nil
	}
	switch list := v.(type) {
	case []shared.LocalPosition:
		return list, nil
	case []interface{}:
		out := make([]shared.LocalPosition, 0, len(list))
		for _, item := range list {
			p, ok := item.(map[string]interface{})
			if !ok {
				return nil, shared.NewValidationError(name, "expected positions with x and y")
			}
			x, xok := toFloat(p["x"])
			y, yok := toFloat(p["y"])
			if !xok || !yok {
				return nil, shared.NewValidationError(name, "expected positions with x and y")
			}
			out = append(out, shared.NewLocalPosition(x, y))
		}
		return out, nil
	}
	return nil, shared.NewValidationError(name, fmt.Sprintf("expected a list, got %T", v))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
