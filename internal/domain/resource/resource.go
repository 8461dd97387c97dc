package resource

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ID identifies an amount resource (kg) or an item resource (count)
type ID int

// Kind tells amount resources apart from countable items
type Kind string

const (
	KindAmount Kind = "AMOUNT"
	KindItem   Kind = "ITEM"
)

// Built-in resources. Catalogs may register more at load time.
const (
	Oxygen ID = iota + 1
	Water
	Food
	GreyWater
	BlackWater
	FoodWaste
	SolidWaste
	CarbonDioxide
	Methane
	Hydrogen
	Compost
	Regolith
	Soybean
	Wheat
	Spirulina
	Ice
	Polyethylene
	AluminumSheet
	IronIngot

	// Items
	Printer
	Wire
	Pipe
	Battery
	Microcontroller
	SpacesuitHelmet
)

// Definition describes one registered resource
type Definition struct {
	ID   ID
	Name string
	Kind Kind
}

var (
	registryMu sync.RWMutex
	byID       = map[ID]Definition{}
	byName     = map[string]Definition{}
	nextID     ID
)

func init() {
	builtin := []Definition{
		{Oxygen, "oxygen", KindAmount},
		{Water, "water", KindAmount},
		{Food, "food", KindAmount},
		{GreyWater, "grey water", KindAmount},
		{BlackWater, "black water", KindAmount},
		{FoodWaste, "food waste", KindAmount},
		{SolidWaste, "solid waste", KindAmount},
		{CarbonDioxide, "carbon dioxide", KindAmount},
		{Methane, "methane", KindAmount},
		{Hydrogen, "hydrogen", KindAmount},
		{Compost, "compost", KindAmount},
		{Regolith, "regolith", KindAmount},
		{Soybean, "soybean", KindAmount},
		{Wheat, "wheat", KindAmount},
		{Spirulina, "spirulina", KindAmount},
		{Ice, "ice", KindAmount},
		{Polyethylene, "polyethylene", KindAmount},
		{AluminumSheet, "aluminum sheet", KindAmount},
		{IronIngot, "iron ingot", KindAmount},
		{Printer, "printer", KindItem},
		{Wire, "wire", KindItem},
		{Pipe, "pipe", KindItem},
		{Battery, "battery", KindItem},
		{Microcontroller, "microcontroller", KindItem},
		{SpacesuitHelmet, "spacesuit helmet", KindItem},
	}
	for _, d := range builtin {
		byID[d.ID] = d
		byName[d.Name] = d
		if d.ID >= nextID {
			nextID = d.ID + 1
		}
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup finds a resource by its case-insensitive name
func Lookup(name string) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := byName[normalize(name)]
	return d, ok
}

// Register adds a resource, or returns the existing one when the name is known
// with the same kind.
func Register(name string, kind Kind) (Definition, error) {
	n := normalize(name)
	if n == "" {
		return Definition{}, fmt.Errorf("resource name cannot be empty")
	}
	if kind != KindAmount && kind != KindItem {
		return Definition{}, fmt.Errorf("unknown resource kind %q", kind)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if d, ok := byName[n]; ok {
		if d.Kind != kind {
			return Definition{}, fmt.Errorf("resource %q already registered as %s", n, d.Kind)
		}
		return d, nil
	}
	d := Definition{ID: nextID, Name: n, Kind: kind}
	nextID++
	byID[d.ID] = d
	byName[n] = d
	return d, nil
}

// Get returns the definition registered under id
func Get(id ID) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := byID[id]
	return d, ok
}

// Name returns the registered name of id, or "resource#<id>" when unknown
func Name(id ID) string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if d, ok := byID[id]; ok {
		return d.Name
	}
	return fmt.Sprintf("resource#%d", int(id))
}

func (id ID) String() string { return Name(id) }

// All lists every registered resource ordered by id
func All() []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Definition, 0, len(byID))
	for _, d := range byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
