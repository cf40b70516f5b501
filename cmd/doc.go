// Package cmd implements the command-line interface for inboxsort.
//
// This package provides the following commands:
//   - serve: Start the HTTP API, or an MCP server with --transport
//   - fetch: Print the most recent messages for an access token
//   - classify: Classify messages read from a file or stdin
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
