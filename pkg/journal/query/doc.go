// Package query validates journal queries and fills in their defaults.
//
// Both storage backends run every query through Validate and ApplyDefaults
// before touching data, so an unknown sort field never reaches SQL.
package query
