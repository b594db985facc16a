// Package stream turns one provider playback into an ordered sequence of
// Events for a single consumer.
//
// # SampleSink
//
// SampleSink is handed to the provider's player. Its Write and Finish
// methods never block: frames are converted to int32 samples and queued,
// and a pump goroutine delivers them on Events in order.
//
// # Session
//
// Session drives one track to completion. Each attempt gets a fresh
// SampleSink and player. Failed loads are retried according to a
// RetryPolicy; the caller sees Retry events between attempts and exactly
// one terminal event at the end:
//
//	events := session.StreamMetadata(ctx, track, meta)
//	for ev := range events {
//	    switch ev := ev.(type) {
//	    case stream.Write:
//	        buf.Append(ev.Content)
//	    case stream.Retry:
//	        bar.SetMessage(fmt.Sprintf("retry %d/%d", ev.Attempt, ev.MaxAttempts))
//	    case stream.Finished:
//	        // done
//	    case stream.Error:
//	        return ev.Err
//	    }
//	}
//
// Writes from a failed attempt are never relayed. The channel is closed
// after the terminal event.
package stream
