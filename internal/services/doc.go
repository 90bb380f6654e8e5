// Package services owns everything that talks to Spotify: the authorized
// [Session] surface the rest of the tool consumes, its Web API
// implementation, and the login flow that produces it.
//
// # Session
//
// [Session] is deliberately small: one profile call, two page fetchers, and
// the two write calls a restore needs. Callers never see tokens or HTTP.
// [SpotifySession] implements it on [SpotifyAPI], the slice of the Web API
// client the tool actually uses, with a [rate.Limiter] pacing every call.
//
// # Authorization
//
// [Authenticator] runs the authorization-code flow with PKCE. The first
// login opens a browser and catches the redirect on a loopback server; the
// resulting token is cached through [TokenStore] keyed by account, so later
// runs go straight to [Authenticator.CachedSession] and refresh silently.
package services
