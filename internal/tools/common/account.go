package common

import (
	"context"

	"github.com/teemow/boxmcp/internal/box"
)

// GetAccountFromArgs returns the "account" argument, or the default account
// when it is missing or empty.
func GetAccountFromArgs(_ context.Context, args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return box.DefaultAccount
}
