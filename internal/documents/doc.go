// Package documents is the boundary to the text extraction backends.
//
// Each Loader turns one file into a domain.SourceDocument: PDF text through
// tabula, PDF tables through tabula's table detector, Excel rosters through
// excelize and plain text dumps as-is. Text loaders fill Lines, table loaders
// fill Rows. Pages without extractable text are dropped here, so the engine
// never sees them. There is no OCR path.
package documents
