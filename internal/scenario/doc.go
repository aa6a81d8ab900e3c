// Package scenario reads YAML scenario documents into driver systems.
//
// A document looks like:
//
//	start_year: 2020
//	end_year: 2050
//	parameters:
//	  distance: 1200
//	  fuel: saf
//	  load_factor: [0.80, 0.82, 0.85]
//	  passengers: {years: [2020, 2021], values: [150, 155]}
//	  saf_share: {reference_years: [2020, 2050], reference_values: [0.0, 0.7]}
//	systems:
//	  - name: baseline
//	  - name: high_saf
//	    parameters:
//	      fuel: hydrogen
//
// Top-level parameters apply to every system; a system's own parameters
// replace them entry by entry. Without a systems list the document describes
// one system named "default".
package scenario
