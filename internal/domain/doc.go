// Package domain models the unit-conversion core: the unit catalog, the
// per-unit conversion functions, the amount validator, and the orchestrator
// that ties them together.
//
// # Domains and Base Units
//
// Every unit belongs to exactly one measurement domain, and every domain has a
// designated base unit through which all conversions are routed:
//
//	Temperature  base Celsius    members Celsius, Fahrenheit, Kelvin
//	Length       base Meters     members Meters, Feet, Inches
//	Mass         base Kilograms  members Kilograms, Pounds, Ounces
//
// A conversion from unit A to unit B is always B.FromBase(A.ToBase(v)).
// Converting a unit to itself short-circuits and returns v unchanged, so
// same-unit conversions are exact even where the base round trip is not.
//
// # Conversion Constants
//
// Exact definitions, all in float64:
//
//	Length:       1 ft = 0.3048 m,       1 in = 0.0254 m
//	Mass:         1 lb = 0.453592 kg,    1 oz = 0.0283495 kg
//	Temperature:  F = C*9/5 + 32,        K = C + 273.15
//
// # Amount Validation
//
// Amounts arrive as raw text. Rules apply in order, first match wins:
//
//	"0", "0.0", "-0"      → "Amount cannot be zero"
//	"", "abc", "1e3"      → "Please enter a valid amount"
//	"12.5", "-40", ".5"   → valid
//
// Accepted literals are plain decimals: an optional sign, digits, and an
// optional fractional part. Exponents, hex, NaN and Inf are rejected.
//
// # Errors
//
// Failures are reported as *ConversionError values wrapping one of
// [ErrInvalidInput], [ErrUnknownUnit] or [ErrUnsupportedDomain]. Nothing in
// this package falls back to a zero value when a unit or domain cannot be
// resolved.
package domain
