// Package schema provides an in-memory model of a relational schema.
//
// A Catalog implements domain.Schema with the checks a database would apply
// (unknown tables, duplicate columns, dangling or still-referenced foreign
// keys), so revisions can be exercised without a database. The memory and file
// stores persist a Catalog next to the applied-revision marker.
//
//	cat := schema.New()
//	_ = cat.CreateTable(ctx, domain.Table{Name: "run", Columns: cols})
//	_ = cat.AddColumn(ctx, "run", domain.Column{Name: "finalized_at", Type: domain.TypeDateTime, Nullable: true})
//
// Catalogs are not safe for concurrent mutation; stores clone them per transaction.
package schema
