/*
Package strata is a schema-migration engine: it moves a database schema
between versions by applying or reverting an ordered set of revisions.

Revisions form a tree. Each one names its parent and carries a forward and a
backward operation; the store records the single revision it currently
reflects. To reach a target, the engine walks from the store's revision down
to the closest common ancestor and back up to the target, one committed step
at a time, under an exclusive lock.

# Key Features

  - Branch aware planning: targets on other branches are reached through the common ancestor.
  - Step atomicity: each step's schema changes and marker update commit together.
  - Resumable runs: a failed run leaves the store at the last committed step; running again continues.
  - Exclusive migration lock: concurrent runs against one store never interleave.

# Usage

Revisions are usually Markdown, YAML or JSON documents in a directory. They can
also be defined in Go with WithRevisions or the pkg/dsl builder.

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/strata"
		"github.com/aretw0/strata/pkg/adapters/sqlite"
	)

	func main() {
		ctx := context.Background()

		eng, err := strata.New("./revisions")
		if err != nil {
			log.Fatal(err)
		}

		store, err := sqlite.Open(ctx, "app.db")
		if err != nil {
			log.Fatal(err)
		}
		defer store.Close()

		report, err := eng.Upgrade(ctx, store, "head")
		if err != nil {
			log.Fatalf("migration stopped at %v: %v", report.Failed(), err)
		}
	}

# Targets

Targets are revision ids, unique id prefixes of at least four characters,
"head", "heads", "base", or relative steps such as "+2" and "-1".
*/
package strata
