// Package files finds input documents on disk and stages uploaded documents.
//
// Discovery lists the loadable documents of an input directory in a stable
// order, which becomes the document order of a batch. Manager saves uploads
// into a per-request directory under the uploads path and removes it after
// the batch.
package files
