// Package resources provides read-only MCP resources describing how
// classification works: the category vocabulary and the model instructions.
package resources
