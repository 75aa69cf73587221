/*
Package domain contains the core domain models of the strata migration engine.

It defines the entities revisions are made of and the values the engine
produces. This package is kept pure and free of I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Revision: one versioned schema change with a forward and backward Operation.
  - Op: a declarative primitive (add/drop column, create/drop table, foreign keys).
  - Schema: the mutation surface stores expose inside a transaction.
  - Plan: the ordered steps between two revisions.
  - ExecutionReport: what happened to every step of a plan.
*/
package domain
