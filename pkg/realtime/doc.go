// Package realtime pushes hub messages to browsers over websockets.
//
// A Server owns named hubs. Browsers connect to {prefix}/{hub}; every frame
// is a JSON invocation {"H": hub, "M": method, "A": [args...]} in both
// directions. Server code reaches connections through Hub.Clients:
//
//	hub := srv.Hub("announcement")
//	err := hub.Clients().All().Send("announcement", album)
//
// Incoming invocations are dispatched to methods registered with Hub.On.
// The built-in methods JoinGroup and LeaveGroup manage group membership.
package realtime
