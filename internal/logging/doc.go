// Package logging holds the slog conventions of boxmcp: the process logger
// constructor and the attribute helpers every component uses, so that the
// same thing is always logged under the same key.
//
//	logger.Info("task assigned",
//		logging.Account(account),
//		logging.UserHash(login))
//
// Box logins are logged as a hash plus their domain and tokens only by
// their length.
package logging
