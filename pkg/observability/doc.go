/*
Package observability provides tools for monitoring the dfa engine.

It adapts the engine's lifecycle hooks to Prometheus metrics: load attempts and
their outcome, the size of the loaded automaton, classifications by verdict and
input length.
*/
package observability
