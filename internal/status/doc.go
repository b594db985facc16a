// Package status serves live download progress over HTTP.
//
// Routes:
//
//	GET /health      liveness probe
//	GET /api/tracks  latest state of every track as JSON
//	GET /ws          websocket stream of progress updates
//
// A websocket client first receives the current snapshot, one message
// per track, and then every update published to the hub. Position
// updates may be dropped for slow clients; lifecycle updates are not.
package status
