// Package metadata supplies the operator metadata attached to every record of a
// document: session date, grade level and group number.
//
// A CLI batch reads it from a YAML manifest:
//
//	defaults:
//	  session_date: 2025-07-14
//	  grade_level: K
//	  group_number: 1
//	documents:
//	  - file: roster_a.pdf
//	    grade_level: "3"
//	    group_number: 2
//
// The HTTP API receives the same fields per uploaded file and goes through Parse.
package metadata
