// Package progress decouples pipelines that report progress from the
// surfaces that display it.
//
// Pipelines create bars through a Reporter and call SetPosition,
// SetMessage and one of Finish, Fail or Skip. The Hub turns those calls
// into Updates and fans them out to subscribers, each on its own
// buffered channel:
//
//	hub := progress.NewHub()
//	updates, cancel := hub.Subscribe(256)
//	go progress.NewPlain(os.Stderr).Run(updates)
//
//	bar := hub.NewBar("A - T", total)
//	bar.SetPosition(n)
//	bar.Finish("done")
//
//	hub.Close() // closes every subscriber channel
//
// Position updates are dropped for a subscriber whose buffer is full.
// Lifecycle updates (created, message, finished, failed, skipped) are
// always delivered. Reporting never feeds back into a pipeline.
package progress
