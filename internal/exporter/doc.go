// Package exporter writes the combined attendance collection.
//
// CSVWriter writes the combined CSV (header row, one row per record, UTF-8 with
// an optional BOM for Excel) and the warnings report. Relative paths land in the
// reports directory. EncodeCSV and EncodeXLSX stream the same content to an
// io.Writer for HTTP downloads. XLSXWriter saves a workbook with a Records sheet
// and, when there are any, a Warnings sheet.
package exporter
