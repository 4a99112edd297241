// Package pipeline runs streaming data through a series of steps connected by channels.
//
// A pipeline starts with root steps that feed it, goes through one-to-one, one-to-one-or-zero and
// one-to-many steps, can be fanned out with splitters and ends with sinks. Every step runs in its own
// goroutines and only touches the channels it was given, so no extra synchronisation is needed
// between steps. Steps can run their function concurrently, in which case the output order is not kept.
//
// Nothing runs until Run is called. Run stops on the first error: the pipeline context is cancelled,
// every step returns and the error is returned wrapped with the name of the failing step.
//
// Options from the measure and drawer packages observe the pipeline while it runs.
package pipeline
