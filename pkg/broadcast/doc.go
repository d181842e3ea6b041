// Package broadcast fans typed values out to any number of subscribers
// without ever blocking the publisher.
//
// The session and cart managers publish an event after every state
// transition; UIs, CLIs and tests subscribe to observe them.
//
//	b := broadcast.New[Event](16)
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//	for ev := range sub.C() {
//	    render(ev.State)
//	}
//
// Each subscriber owns a buffered channel. When it is full the value is
// dropped for that subscriber only; Dropped reports how many were lost.
// Cancelling the subscribe context or calling Close ends the subscription and
// closes its channel.
package broadcast
