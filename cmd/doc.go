// Package cmd implements the command-line interface for boxmcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing Box task and collection tools
//   - tasks: Manage Box tasks and task assignments from the shell
//   - collections: List Box collections and change folder membership
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
package cmd
