// Package classify_tools exposes message classification as an MCP tool.
package classify_tools
