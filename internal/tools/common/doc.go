// Package common provides helpers shared by the MCP tool packages: account
// selection, argument decoding and instrumentation of tool handlers.
package common
