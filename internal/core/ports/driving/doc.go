// Package driving holds the service interfaces the CLI, the MCP server and
// the file watcher call into. internal/core/services implements them.
package driving
