/*
Package espalier is the graph core of a visual decision-workflow builder.

Users assemble workflows from four kinds of nodes: Sources feed records in
from a data file, Rules evaluate an expression over their inputs, LogicGates
combine rule outcomes with AND/OR, and Actions terminate a path with an
operational instruction. Nodes expose named sockets; connections wire an
output socket of one node to an input socket of another. The finished graph
compiles into a ruleset document that a separate execution backend runs
against the actual data.

The library is split hexagonally. The inner packages (domain, graph,
ruleset) know nothing about storage or transport; drafts persist through the
ports.DraftStore interface with in-memory and Redis adapters, and the HTTP
adapter exposes the whole editing surface as a REST API.

# Usage

The Session facade wraps the factory, the store and the input reconciler:

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/espalier"
	)

	func main() {
		s := espalier.New("pharma")

		pills := s.AddSource("pills", "pill_data.csv")
		potency := s.AddRule("potency", "float", "potency > 0.8", 1)
		discard := s.AddAction("DISCARD")

		if _, err := s.Connect(pills, "output0", potency, "input0"); err != nil {
			log.Fatal(err)
		}
		if _, err := s.Connect(potency, "output0", discard, "input0"); err != nil {
			log.Fatal(err)
		}

		rs, err := s.Compile()
		if err != nil {
			log.Fatal(err)
		}
		data, _ := rs.MarshalPretty()
		fmt.Print(string(data))
	}

For fluent graph construction without manual socket keys, see the dsl
package. For loading and saving editable drafts, see the document package.
*/
package espalier
