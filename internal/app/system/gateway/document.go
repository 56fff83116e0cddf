// internal/app/system/gateway/document.go
package gateway

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Document is a parsed GraphQL operation ready to be sent.
type Document struct {
	Source    string
	Operation string // query | mutation
	Name      string // operation name, or the root field for anonymous operations
	Field     string // response key of the single root field
}

// Parse checks src and extracts the operation name and root field.
// Only documents with exactly one operation and one root field are accepted,
// since Call decodes data from that one key.
func Parse(src string) (Document, error) {
	qd, err := parser.ParseQuery(&ast.Source{Name: "operation", Input: src})
	if err != nil {
		return Document{}, fmt.Errorf("parse operation: %w", err)
	}
	if len(qd.Operations) != 1 {
		return Document{}, fmt.Errorf("expected one operation, found %d", len(qd.Operations))
	}
	op := qd.Operations[0]
	if len(op.SelectionSet) != 1 {
		return Document{}, fmt.Errorf("operation %q: expected one root field, found %d", op.Name, len(op.SelectionSet))
	}
	field, ok := op.SelectionSet[0].(*ast.Field)
	if !ok {
		return Document{}, fmt.Errorf("operation %q: root selection is not a field", op.Name)
	}

	key := field.Alias
	if key == "" {
		key = field.Name
	}
	name := op.Name
	if name == "" {
		name = key
	}

	return Document{
		Source:    src,
		Operation: string(op.Operation),
		Name:      name,
		Field:     key,
	}, nil
}

// MustParse is Parse for package-level documents; it panics on a bad document.
func MustParse(src string) Document {
	d, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return d
}
