// Package schema reads and checks table-state documents.
//
// A document is the loosely typed form of a domain.TableState: the tree of maps
// a JSON body, a YAML file, MCP arguments or command-line flags decode to.
// Decode converts it (weakly: "2" is a page number) and validates the result,
// reporting every problem at once:
//
//	doc := map[string]any{}
//	doc = schema.Set(doc, "sort.pointer", "name")
//	doc = schema.Set(doc, "slice", map[string]any{"page": "2", "size": 20})
//
//	state, err := schema.Decode(doc)
//	for _, e := range schema.ValidationErrors(err) {
//	    // Handle each failure
//	}
//
// Records are read with ReadRecords or LoadRecords, which accept YAML as well
// as JSON since the latter is a subset of the former.
package schema
