// Package deeplink resolves external links into in-app navigation targets
// for every linked account they belong to.
//
// The package provides:
//   - A Registry that compiles each platform family's canonical link shapes
//     per (family, host) and caches them
//   - A Resolver that matches a link against every account's patterns
//   - Materialize, which turns an abstract Profile or Post into an
//     account-scoped navigation target
//   - A Service with a middleware chain for logging, metrics and tracing
//
// # Link Shapes
//
//	mastodon   https://{host}/@{handle}          https://{host}/@{handle}/{id}
//	misskey    https://{host}/@{handle}          https://{host}/notes/{id}
//	bluesky    https://{host}/profile/{handle}   https://{host}/profile/{handle}/post/{id}
//	x          https://{host}/{handle}           https://{host}/{handle}/status/{id}
//	vvo        (none)
//
// # Usage
//
//	svc := deeplink.NewService(accounts.Static{
//	    {ID: "1", Host: "mastodon.social", Family: platform.Mastodon},
//	    {ID: "2", Host: "mastodon.social", Family: platform.Mastodon},
//	})
//
//	res, err := svc.Resolve(ctx, "https://mastodon.social/@alice")
//	if err != nil {
//	    return err
//	}
//	for _, route := range res.Routes {
//	    // route.Path() == "/profile/1@mastodon.social/mastodon.social/alice", ...
//	}
//
// Most links are not deep links; an empty result is the normal outcome.
package deeplink
