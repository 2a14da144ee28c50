/*
Package dsl provides a fluent builder for constructing workflow graphs in Go
instead of loading them from document files. This is useful for tests,
dynamic graph generation, and anywhere IDE type-checking beats hand-editing
YAML.

Example usage:

	b := dsl.New()

	pills := b.Source("pills", "pill_data.csv")
	potency := b.Rule("potency", "float", "potency > 0.8")
	cracked := b.Rule("cracked", "bool", "is_cracked == True")
	either := b.Gate(domain.GateOr)
	discard := b.Action("DISCARD")

	b.Connect(pills, potency)
	b.Connect(pills, cracked)
	b.Connect(potency, either)
	b.Connect(cracked, either)
	b.Connect(either, discard)

	store, err := b.Build()
	// ... compile store with pkg/ruleset

Connect picks socket keys automatically: the source's first output, and the
target's next unclaimed input. Variable-arity targets grow as needed at
Build time; explicit keys are available through ConnectKeys.
*/
package dsl
