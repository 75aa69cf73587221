/*
Package ports defines the driven ports (interfaces) for the strata engine.

These interfaces decouple the migration core from external implementations,
allowing the engine to run against various revision sources, stores and lock
backends.

# Key Interfaces

  - RevisionSource: discovers revision definitions (e.g., from Go code or a Loam directory).
  - Store: reads the applied-revision marker and opens schema transactions.
  - Tx: the schema-mutation surface plus the marker write, committed atomically.
  - DistributedLocker: provides the exclusive migration lock across processes.
*/
package ports
