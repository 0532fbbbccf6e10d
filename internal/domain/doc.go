// Package domain models historical climate observations and the risk
// classification derived from them.
//
// # Data Sources
//
// Observations come from country-level historical climate archives (for
// example the World Bank Climate Change Knowledge Portal exports). Two shapes
// are supported upstream:
//
//	Tabular CSV: one row per country-year with columns {name, year, value},
//	one file per metric (temperature in °C, precipitation in mm).
//
//	Monthly JSON: one record per country with parallel monthly arrays
//	{"country", "tas": [...], "pr": [...]} running from 1901 to present.
//	Monthly arrays are reduced to yearly means before any analysis.
//
// A missing observation is represented as nil, never as zero. Zero is a valid
// temperature; conflating the two would bias every mean downstream.
//
// # Country Name Conventions
//
// The same country is spelled differently across the upstream sources
// ("United Kingdom" vs "UK" vs "United Kingdom of Great Britain and Northern
// Ireland (the)"). All joins therefore go through [NormalizeCountry], which
// strips parenthetical qualifiers, trims, and lowercases. Raw names are kept
// only for display. An empty normalized key means "unmatchable" and must be
// treated as no-match, never joined against other empty keys.
//
// # Risk Classification
//
// Risk is derived by comparing a baseline period (first 30 chronological
// points) against a recent period (last 5 points) of each metric:
//
//	temperature anomaly  = recent mean − baseline mean   (absolute °C)
//	precipitation change = (recent − baseline) / baseline × 100   (percent)
//
// Each metric is scored on a small ladder and the higher score selects the
// primary risk category:
//
//	Temperature:   ≥1.5°C → 3 | ≥1.0°C → 2 | >0 → 1 | else 0
//	Precipitation: <−10% → 3 (drought, weighted asymmetrically)
//	               |Δ|≥15% → 2.5 | |Δ|≥5% → 2 | |Δ|>0 → 1 | else 0
//
// Fewer than 35 usable points in either series yields the defined
// insufficient-data state rather than an error. A near-zero precipitation
// baseline makes the percent change undefined; the guard in [AssessRisk]
// leaves the change nil instead of propagating Inf or NaN.
package domain
