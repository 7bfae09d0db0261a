// Package output delivers generated router documents.
//
// FileWriter writes "<Name>.g.sol" into the project's output directory and
// leaves files with unchanged content untouched. S3Writer uploads the same
// document to a bucket.
package output

import (
	"context"

	"github.com/cannon-dev/cannon/pkg/router"
)

// Writer delivers one router document.
type Writer interface {
	Write(ctx context.Context, doc *router.Document) (Result, error)
}

// Result describes a delivered document.
type Result struct {
	// Location is the file path or object URL the document was written to.
	Location string

	// Unchanged is true when the destination already held the same content.
	Unchanged bool
}
