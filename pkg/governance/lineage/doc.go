// Package lineage defines, validates and projects the provenance graph of a
// derived metric: source inputs, ordered transform steps and outputs.
//
// # Basic Usage
//
//	l, err := lineage.Define(kpiID, inputs, transforms, outputs)
//	if err != nil {
//	    return err // *governance.ValidationError when inputs is empty
//	}
//	if res := lineage.Validate(l); !res.Valid {
//	    log.Printf("lineage issues: %v", res.Issues)
//	}
//	graph := lineage.BuildGraph(l)
package lineage
