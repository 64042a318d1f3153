package domain

import (
	"fmt"
	"strings"
)

// Domain is a closed category of convertible units. The zero value is not a
// valid domain.
type Domain int

const (
	Temperature Domain = iota + 1
	Length
	Mass
)

func (d Domain) String() string {
	switch d {
	case Temperature:
		return "Temperature"
	case Length:
		return "Length"
	case Mass:
		return "Mass"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// Valid reports whether d is one of the enumerated domains.
func (d Domain) Valid() bool {
	return d >= Temperature && d <= Mass
}

// BaseUnit returns the unit every conversion in d is routed through.
func (d Domain) BaseUnit() (Unit, error) {
	switch d {
	case Temperature:
		return Celsius, nil
	case Length:
		return Meters, nil
	case Mass:
		return Kilograms, nil
	default:
		return 0, unsupportedDomain(d.String())
	}
}

// Unit is a single measurement unit. The zero value is not a valid unit.
type Unit int

const (
	Celsius Unit = iota + 1
	Fahrenheit
	Kelvin
	Meters
	Feet
	Inches
	Kilograms
	Pounds
	Ounces
)

// Name returns the canonical display name, e.g. "Fahrenheit".
func (u Unit) Name() string {
	switch u {
	case Celsius:
		return "Celsius"
	case Fahrenheit:
		return "Fahrenheit"
	case Kelvin:
		return "Kelvin"
	case Meters:
		return "Meters"
	case Feet:
		return "Feet"
	case Inches:
		return "Inches"
	case Kilograms:
		return "Kilograms"
	case Pounds:
		return "Pounds"
	case Ounces:
		return "Ounces"
	default:
		return ""
	}
}

func (u Unit) String() string {
	if name := u.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// Domain returns the domain u belongs to, or 0 for an invalid unit.
func (u Unit) Domain() Domain {
	switch u {
	case Celsius, Fahrenheit, Kelvin:
		return Temperature
	case Meters, Feet, Inches:
		return Length
	case Kilograms, Pounds, Ounces:
		return Mass
	default:
		return 0
	}
}

// domainOrder and catalog fix the listing order used to populate selectors.
var (
	domainOrder = []Domain{Temperature, Length, Mass}

	catalog = map[Domain][]Unit{
		Temperature: {Celsius, Fahrenheit, Kelvin},
		Length:      {Meters, Feet, Inches},
		Mass:        {Kilograms, Pounds, Ounces},
	}

	domainIndex = buildDomainIndex()
	unitIndex   = buildUnitIndex()
)

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func buildDomainIndex() map[string]Domain {
	idx := make(map[string]Domain, len(domainOrder))
	for _, d := range domainOrder {
		idx[normalizeName(d.String())] = d
	}
	return idx
}

func buildUnitIndex() map[Domain]map[string]Unit {
	idx := make(map[Domain]map[string]Unit, len(catalog))
	for d, units := range catalog {
		byName := make(map[string]Unit, len(units))
		for _, u := range units {
			byName[normalizeName(u.Name())] = u
		}
		idx[d] = byName
	}
	return idx
}

// Domains returns every domain in listing order.
func Domains() []Domain {
	out := make([]Domain, len(domainOrder))
	copy(out, domainOrder)
	return out
}

// ParseDomain resolves a domain by display name, ignoring case.
func ParseDomain(name string) (Domain, error) {
	d, ok := domainIndex[normalizeName(name)]
	if !ok {
		return 0, unsupportedDomain(name)
	}
	return d, nil
}

// Units returns the units of d in listing order, base unit first. It returns
// nil for an invalid domain.
func Units(d Domain) []Unit {
	units, ok := catalog[d]
	if !ok {
		return nil
	}
	out := make([]Unit, len(units))
	copy(out, units)
	return out
}

// ListUnits returns the display names of the units of d in listing order.
func ListUnits(d Domain) ([]string, error) {
	units, ok := catalog[d]
	if !ok {
		return nil, unsupportedDomain(d.String())
	}
	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.Name()
	}
	return names, nil
}

// Lookup resolves a unit of d by display name. Matching is case-insensitive
// and ignores surrounding whitespace.
func Lookup(d Domain, name string) (Unit, error) {
	byName, ok := unitIndex[d]
	if !ok {
		return 0, unsupportedDomain(d.String())
	}
	u, ok := byName[normalizeName(name)]
	if !ok {
		return 0, unknownUnit(d, name)
	}
	return u, nil
}
