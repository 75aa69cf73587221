/*
Package dsl provides a Go DSL for defining strata revisions in code.

It is an alternative to revision documents: a fluent builder that records
schema operations and, for additive changes, derives the backward half
automatically.

Example usage:

	package main

	import (
		"github.com/aretw0/strata"
		"github.com/aretw0/strata/pkg/domain"
		"github.com/aretw0/strata/pkg/dsl"
	)

	func main() {
		b := dsl.New()

		b.Add("9ba30ab3b2b4").
			Label("initial").
			CreateTable(dsl.Table("run",
				dsl.Col("id", domain.TypeInteger, dsl.PrimaryKey(), dsl.AutoIncrement()),
				dsl.Col("name", domain.TypeString, dsl.Nullable()),
			)).
			Then("3c4f22db7a46").
			Label("run end time").
			AddColumn("run", dsl.Col("finalized_at", domain.TypeDateTime, dsl.Nullable()))

		source, err := b.Build()
		// ... pass source to strata.New("", strata.WithSource(source))
	}
*/
package dsl
