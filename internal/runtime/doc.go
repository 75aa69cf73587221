// Package runtime composes the graph, inspector, planner and executor into the
// migration engine. It owns the locking protocol around every run.
package runtime
