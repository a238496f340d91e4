// Package statestream provides named state containers exposed as replayable
// push-streams, and the machinery to combine and extend them.
//
// # Setup
//
// A Runtime holds the observable primitive every stream is built with and
// the plugin registry applied at construction. The package-level functions
// use a process-wide default runtime:
//
//	if err := statestream.Setup(statestream.SetupOptions{
//	    Primitive: observable.Basic{},
//	}); err != nil {
//	    return err
//	}
//	defer statestream.Teardown()
//
// # State Streams
//
// Subscribing to State() delivers the current value first, then every value
// set through Next:
//
//	count, _ := statestream.New("count", 0)
//	count.State().Subscribe(observable.NextFunc(func(v any) {
//	    fmt.Println(v) // 0, then 1
//	}))
//	count.Next(statestream.Reduce(func(n int) int { return n + 1 }))
//
// Next on a disposed stream is dropped with a warning on the runtime logger.
//
// # Combination
//
// A stream constructed with sources emits a map[string]any keyed by the
// name of every source and of the stream itself. Nothing is emitted until
// every participant has delivered a value; after that every participant
// update produces a new map:
//
//	a, _ := statestream.New("a", "A")
//	b, _ := statestream.New("b", "B")
//	c, _ := statestream.New("c", "C", a, b)
//	// c.State() emits map[a:A b:B c:C]
//
// Unsubscribing from a combined stream releases the participant
// subscriptions without disposing the participants.
//
// # Event Runners
//
// EventRunner pipes an input stream through a Factory and returns a
// multicast stream that replays the last output value to late consumers.
//
// # Plugins and Emitters
//
// Plugins run once per construction, in registry order, and may return a
// replacement Stream, typically a wrapper type embedding the original.
// Emitters and plugin-added methods live in a per-stream capability table
// reachable through Method, Call and Emit.
//
// # Errors
//
// Errors are returned synchronously and match ErrConfiguration, ErrValue or
// ErrType through errors.Is.
package statestream
