/*
Package observability provides tools for monitoring the strata engine.

It turns the engine's lifecycle hooks into structured log lines and Prometheus
metrics. Short-lived CLI runs can export their metrics to a node_exporter
textfile collector instead of serving them.
*/
package observability
