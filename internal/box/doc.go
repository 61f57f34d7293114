// Package box provides the HTTP client shared by the Box resource managers.
//
// The client speaks the Box Content API (https://api.box.com/2.0). It is
// deliberately thin: managers hand it a path, an optional query string and an
// optional JSON body, and receive the outcome through a Handler. The
// DefaultResponseHandler converts that raw outcome into the error-first
// Callback convention used throughout this module:
//
//   - transport failures and non-2xx responses become an error
//   - successful responses pass the raw JSON body through undecoded
//
// # Authentication
//
// Two credential styles are supported, selected from Config:
//   - a developer token, sent as a static bearer token
//   - client credentials grant (server authentication), exchanged at the
//     Box token endpoint for an enterprise or user subject
//
// # Accounts
//
// A configuration file may declare several named accounts. Each account
// produces an independent Client. The account named "default" can also be
// configured entirely through BOX_* environment variables.
//
// # Example Usage
//
//	cfg, err := box.LoadAccountConfig("", "default")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := box.NewClient(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	body, err := box.Await(ctx, func(cb box.Callback) {
//	    client.Get(ctx, "/collections", nil, client.DefaultResponseHandler(cb))
//	})
package box
