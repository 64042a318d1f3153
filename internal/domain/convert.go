package domain

import (
	"fmt"
	"math"
)

const (
	metersPerFoot    = 0.3048
	metersPerInch    = 0.0254
	kilogramsPerLb   = 0.453592
	kilogramsPerOz   = 0.0283495
	kelvinOffset     = 273.15
	fahrenheitOffset = 32.0
)

// ToBase converts v from u into its domain's base unit.
func (u Unit) ToBase(v float64) float64 {
	switch u {
	case Fahrenheit:
		return (v - fahrenheitOffset) * 5 / 9
	case Kelvin:
		return v - kelvinOffset
	case Feet:
		return v * metersPerFoot
	case Inches:
		return v * metersPerInch
	case Pounds:
		return v * kilogramsPerLb
	case Ounces:
		return v * kilogramsPerOz
	default:
		// Celsius, Meters, Kilograms
		return v
	}
}

// FromBase converts v from the base unit of u's domain into u.
func (u Unit) FromBase(v float64) float64 {
	switch u {
	case Fahrenheit:
		return v*9/5 + fahrenheitOffset
	case Kelvin:
		return v + kelvinOffset
	case Feet:
		return v / metersPerFoot
	case Inches:
		return v / metersPerInch
	case Pounds:
		return v / kilogramsPerLb
	case Ounces:
		return v / kilogramsPerOz
	default:
		return v
	}
}

// ConvertValue converts v between two units of the same domain. Converting a
// unit to itself returns v unchanged. A result outside the float64 range is
// reported as invalid input rather than returned as an infinity.
func ConvertValue(v float64, from, to Unit) (float64, error) {
	if from.Domain() == 0 {
		return 0, &ConversionError{Kind: ErrUnknownUnit, Message: fmt.Sprintf("invalid source unit %s", from)}
	}
	if from.Domain() != to.Domain() {
		return 0, &ConversionError{
			Kind:    ErrUnknownUnit,
			Message: fmt.Sprintf("%s is not a %s unit", to, from.Domain()),
		}
	}
	out := v
	if from != to {
		out = to.FromBase(from.ToBase(v))
	}
	if math.IsInf(out, 0) || math.IsNaN(out) {
		return 0, invalidInput(MsgInvalidAmount)
	}
	return out, nil
}

// Convert validates rawAmount, resolves both unit names within d, and
// returns the converted value.
func Convert(d Domain, sourceName, targetName, rawAmount string) (float64, error) {
	if !d.Valid() {
		return 0, unsupportedDomain(d.String())
	}

	value, err := ParseAmount(rawAmount)
	if err != nil {
		return 0, err
	}

	source, err := Lookup(d, sourceName)
	if err != nil {
		return 0, err
	}
	target, err := Lookup(d, targetName)
	if err != nil {
		return 0, err
	}

	return ConvertValue(value, source, target)
}
