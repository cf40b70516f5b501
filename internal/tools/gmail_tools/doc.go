// Package gmail_tools exposes message fetching as an MCP tool.
//
//   - gmail_fetch_messages: fetch id, sender and snippet of the most recent
//     messages for a Google OAuth access token
//
// The tool returns the same JSON document as GET /emails/fetch.
package gmail_tools
