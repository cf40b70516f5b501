// Package common provides helpers shared by the MCP tool packages: the
// instrumented handler wrapper and JSON result encoding.
package common
