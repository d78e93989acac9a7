// Package attendance turns the line-oriented text of attendance documents into
// AttendeeRecords.
//
// A document flows through the pipeline one line at a time:
//
//	lines -> ContextTracker (school header, workshop title)
//	      -> candidate filter (email token)
//	      -> Strategy (first/last name)
//	      -> AttendanceDetector (sign-in timestamp)
//	      -> NormalizeName
//	      -> AttendeeRecord
//
// Engine runs that pipeline for one document. Batch runs the Engine over many
// documents with bounded concurrency and merges the results in document order.
// Failures never abort a batch: an unreadable document and an unparsable line
// are both downgraded to a Warning and collected next to the records.
package attendance
