// Package catalog loads building types, workshop recipes and settlement
// templates from YAML. A catalog is checked against an embedded JSON schema
// before it is decoded, then its cross references are resolved.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/infrastructure/config"
)

//go:embed catalog.yaml
var defaultCatalog []byte

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "catalog.schema.json"

// ResourceDef registers an extra resource before anything refers to it
type ResourceDef struct {
	Name string `yaml:"name" validate:"required"`
	Kind string `yaml:"kind" validate:"oneof=AMOUNT ITEM"`
}

// ItemDef is one input or output of a recipe
type ItemDef struct {
	Resource string  `yaml:"resource" validate:"required"`
	Amount   float64 `yaml:"amount" validate:"gt=0"`
}

// ProcessDef is a manufacture or food production recipe
type ProcessDef struct {
	Name          string    `yaml:"name" validate:"required"`
	Workshop      string    `yaml:"workshop" validate:"oneof=manufacture food_production"`
	TechLevel     int       `yaml:"tech_level" validate:"min=0"`
	SkillLevel    int       `yaml:"skill_level" validate:"min=0"`
	WorkTime      float64   `yaml:"work_time" validate:"min=0"`
	ProcessTime   float64   `yaml:"process_time" validate:"min=0"`
	PowerRequired float64   `yaml:"power_required" validate:"min=0"`
	Inputs        []ItemDef `yaml:"inputs" validate:"dive"`
	Outputs       []ItemDef `yaml:"outputs" validate:"min=1,dive"`
}

// SpotDef is an activity spot relative to the building centre
type SpotDef struct {
	Name string  `yaml:"name" validate:"required"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// RateDef is a continuous flow in kg per millisol
type RateDef struct {
	Resource string  `yaml:"resource" validate:"required"`
	Rate     float64 `yaml:"rate" validate:"gt=0"`
}

// ResourceProcessDef is a waste processing conversion
type ResourceProcessDef struct {
	Name          string    `yaml:"name" validate:"required"`
	PowerRequired float64   `yaml:"power_required" validate:"min=0"`
	DefaultOn     bool      `yaml:"default_on"`
	Inputs        []RateDef `yaml:"inputs" validate:"dive"`
	Outputs       []RateDef `yaml:"outputs" validate:"min=1,dive"`
}

// FunctionDef configures one function of a building type
type FunctionDef struct {
	Type         string                 `yaml:"type" validate:"required"`
	Capacity     int                    `yaml:"capacity" validate:"min=0"`
	TechLevel    int                    `yaml:"tech_level" validate:"min=0"`
	Properties   map[string]interface{} `yaml:"properties"`
	Spots        []SpotDef              `yaml:"activity_spots" validate:"dive"`
	Capacities   map[string]float64     `yaml:"capacities"`
	InitialStock map[string]float64     `yaml:"initial_stock"`
	Processes    []ResourceProcessDef   `yaml:"processes" validate:"dive"`
}

// BuildingDef is a building type and the functions it carries
type BuildingDef struct {
	Type      string        `yaml:"type" validate:"required"`
	Functions []FunctionDef `yaml:"functions" validate:"min=1,dive"`
}

// PlacementDef puts a building type on the settlement grid
type PlacementDef struct {
	Type   string  `yaml:"type" validate:"required"`
	Name   string  `yaml:"name" validate:"required"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Facing float64 `yaml:"facing" validate:"gte=0,lt=360"`
}

type PersonDef struct {
	Name     string `yaml:"name" validate:"required"`
	Gender   string `yaml:"gender" validate:"oneof=MALE FEMALE"`
	Building string `yaml:"building"`
}

type RobotDef struct {
	Name     string `yaml:"name" validate:"required"`
	Building string `yaml:"building"`
}

type VehicleDef struct {
	Name string `yaml:"name" validate:"required"`
	Type string `yaml:"type" validate:"oneof=ROVER LUV FLYER"`
}

// Template describes a starting settlement
type Template struct {
	Name            string         `yaml:"name" validate:"required"`
	GeneralCapacity float64        `yaml:"general_capacity" validate:"min=0"`
	Buildings       []PlacementDef `yaml:"buildings" validate:"min=1,dive"`
	People          []PersonDef    `yaml:"people" validate:"dive"`
	Robots          []RobotDef     `yaml:"robots" validate:"dive"`
	Vehicles        []VehicleDef   `yaml:"vehicles" validate:"dive"`
}

// Catalog is a loaded, cross-checked catalog document
type Catalog struct {
	Resources   []ResourceDef `yaml:"resources" validate:"dive"`
	Processes   []ProcessDef  `yaml:"processes" validate:"dive"`
	Buildings   []BuildingDef `yaml:"buildings" validate:"min=1,dive"`
	Settlements []Template    `yaml:"settlements" validate:"dive"`

	buildings map[string]*BuildingDef
	processes map[string]*ProcessDef
}

// LoadDefault parses the catalog compiled into the binary
func LoadDefault() (*Catalog, error) {
	c, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("default catalog: %w", err)
	}
	return c, nil
}

// Load reads a catalog file; an empty path loads the default catalog
func Load(path string) (*Catalog, error) {
	if path == "" {
		return LoadDefault()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse validates raw YAML against the schema, decodes it and resolves every
// name it refers to. Extra resources are registered as a side effect.
func Parse(raw []byte) (*Catalog, error) {
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := config.NewValidator().Validate(&c); err != nil {
		return nil, err
	}

	for _, r := range c.Resources {
		if _, err := resource.Register(r.Name, resource.Kind(r.Kind)); err != nil {
			return nil, fmt.Errorf("resource %q: %w", r.Name, err)
		}
	}

	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func validateSchema(raw []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("failed to load catalog schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("failed to compile catalog schema: %w", err)
	}

	// The validator wants encoding/json values, so the YAML tree takes a JSON round trip.
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode catalog: %w", err)
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("catalog is not representable as JSON: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(encoded, &v); err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("catalog does not match schema: %w", err)
	}
	return nil
}

func (c *Catalog) index() error {
	c.buildings = make(map[string]*BuildingDef, len(c.Buildings))
	for i := range c.Buildings {
		b := &c.Buildings[i]
		key := normalize(b.Type)
		if _, dup := c.buildings[key]; dup {
			return shared.NewValidationError("buildings", fmt.Sprintf("building type %q defined twice", b.Type))
		}
		c.buildings[key] = b
		for _, f := range b.Functions {
			if _, err := f.spec(); err != nil {
				return fmt.Errorf("building type %q: %w", b.Type, err)
			}
		}
	}

	c.processes = make(map[string]*ProcessDef, len(c.Processes))
	for i := range c.Processes {
		p := &c.Processes[i]
		key := normalize(p.Name)
		if _, dup := c.processes[key]; dup {
			return shared.NewValidationError("processes", fmt.Sprintf("process %q defined twice", p.Name))
		}
		if _, err := p.Info(); err != nil {
			return err
		}
		c.processes[key] = p
	}

	seen := make(map[string]bool, len(c.Settlements))
	for _, t := range c.Settlements {
		if seen[normalize(t.Name)] {
			return shared.NewValidationError("settlements", fmt.Sprintf("settlement %q defined twice", t.Name))
		}
		seen[normalize(t.Name)] = true
		if err := c.checkTemplate(t); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) checkTemplate(t Template) error {
	names := make(map[string]bool, len(t.Buildings))
	for _, pl := range t.Buildings {
		if _, ok := c.buildings[normalize(pl.Type)]; !ok {
			return shared.NewValidationError(t.Name, fmt.Sprintf("unknown building type %q", pl.Type))
		}
		if names[pl.Name] {
			return shared.NewValidationError(t.Name, fmt.Sprintf("building name %q used twice", pl.Name))
		}
		names[pl.Name] = true
	}
	for _, p := range t.People {
		if p.Building != "" && !names[p.Building] {
			return shared.NewValidationError(t.Name, fmt.Sprintf("%s lives in unknown building %q", p.Name, p.Building))
		}
	}
	for _, r := range t.Robots {
		if r.Building != "" && !names[r.Building] {
			return shared.NewValidationError(t.Name, fmt.Sprintf("%s works in unknown building %q", r.Name, r.Building))
		}
	}
	return nil
}

// Building returns the definition of a building type
func (c *Catalog) Building(buildingType string) (*BuildingDef, bool) {
	b, ok := c.buildings[normalize(buildingType)]
	return b, ok
}

// Specs converts every function of a building type into domain specs
func (b *BuildingDef) Specs() ([]function.Spec, error) {
	specs := make([]function.Spec, 0, len(b.Functions))
	for _, f := range b.Functions {
		s, err := f.spec()
		if err != nil {
			return nil, fmt.Errorf("building type %q: %w", b.Type, err)
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Process looks up a recipe by name
func (c *Catalog) Process(name string) (function.ProcessInfo, function.Type, error) {
	p, ok := c.processes[normalize(name)]
	if !ok {
		return function.ProcessInfo{}, 0, shared.NewNotFoundError("process", name)
	}
	info, err := p.Info()
	if err != nil {
		return function.ProcessInfo{}, 0, err
	}
	workshop, _ := function.ParseType(p.Workshop)
	return info, workshop, nil
}

// Template looks up a settlement template by name
func (c *Catalog) Template(name string) (Template, error) {
	for _, t := range c.Settlements {
		if normalize(t.Name) == normalize(name) {
			return t, nil
		}
	}
	return Template{}, shared.NewNotFoundError("settlement template", name)
}

// BuildingTypes lists the building type names in catalog order
func (c *Catalog) BuildingTypes() []string {
	out := make([]string, len(c.Buildings))
	for i, b := range c.Buildings {
		out[i] = b.Type
	}
	return out
}

// ProcessNames lists recipe names alphabetically
func (c *Catalog) ProcessNames() []string {
	out := make([]string, 0, len(c.Processes))
	for _, p := range c.Processes {
		out = append(out, p.Name)
	}
	sort.Strings(out)
	return out
}

// Info converts the recipe into a validated domain ProcessInfo
func (p *ProcessDef) Info() (function.ProcessInfo, error) {
	inputs, err := items(p.Inputs)
	if err != nil {
		return function.ProcessInfo{}, fmt.Errorf("process %q: %w", p.Name, err)
	}
	outputs, err := items(p.Outputs)
	if err != nil {
		return function.ProcessInfo{}, fmt.Errorf("process %q: %w", p.Name, err)
	}
	info := function.ProcessInfo{
		Name:          p.Name,
		TechLevel:     p.TechLevel,
		SkillLevel:    p.SkillLevel,
		WorkTime:      p.WorkTime,
		ProcessTime:   p.ProcessTime,
		PowerRequired: p.PowerRequired,
		Inputs:        inputs,
		Outputs:       outputs,
	}
	if err := info.Validate(); err != nil {
		return function.ProcessInfo{}, err
	}
	return info, nil
}

func (f FunctionDef) spec() (function.Spec, error) {
	t, err := function.ParseType(f.Type)
	if err != nil {
		return function.Spec{}, err
	}
	spec := function.Spec{
		Type:       t,
		TechLevel:  f.TechLevel,
		Capacity:   f.Capacity,
		Properties: f.Properties,
	}
	for _, s := range f.Spots {
		spec.ActivitySpots = append(spec.ActivitySpots, function.SpotSpec{
			Name:     s.Name,
			Position: shared.NewLocalPosition(s.X, s.Y),
		})
	}
	if spec.Capacities, err = amounts(f.Capacities); err != nil {
		return function.Spec{}, err
	}
	if spec.InitialStock, err = amounts(f.InitialStock); err != nil {
		return function.Spec{}, err
	}
	for _, p := range f.Processes {
		ps := function.ResourceProcessSpec{
			Name:          p.Name,
			PowerRequired: p.PowerRequired,
			DefaultOn:     p.DefaultOn,
		}
		if ps.Inputs, err = rates(p.Inputs); err != nil {
			return function.Spec{}, err
		}
		if ps.Outputs, err = rates(p.Outputs); err != nil {
			return function.Spec{}, err
		}
		spec.Processes = append(spec.Processes, ps)
	}
	return spec, nil
}

func lookup(name string) (resource.ID, error) {
	d, ok := resource.Lookup(name)
	if !ok {
		return 0, shared.NewNotFoundError("resource", name)
	}
	return d.ID, nil
}

func items(defs []ItemDef) ([]function.ProcessItem, error) {
	out := make([]function.ProcessItem, 0, len(defs))
	for _, d := range defs {
		id, err := lookup(d.Resource)
		if err != nil {
			return nil, err
		}
		out = append(out, function.ProcessItem{Resource: id, Amount: d.Amount})
	}
	return out, nil
}

func rates(defs []RateDef) ([]function.ResourceRate, error) {
	out := make([]function.ResourceRate, 0, len(defs))
	for _, d := range defs {
		id, err := lookup(d.Resource)
		if err != nil {
			return nil, err
		}
		out = append(out, function.ResourceRate{Resource: id, Rate: d.Rate})
	}
	return out, nil
}

func amounts(in map[string]float64) (map[resource.ID]float64, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[resource.ID]float64, len(in))
	for name, kg := range in {
		id, err := lookup(name)
		if err != nil {
			return nil, err
		}
		out[id] = kg
	}
	return out, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
