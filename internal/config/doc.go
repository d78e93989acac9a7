// Package config provides centralized configuration management for the attendance
// extractor. It handles loading configuration from multiple sources, validation,
// and path resolution.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (config.yaml or configs/config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ATTEND_<SECTION>_<FIELD>:
//
//	ATTEND_SERVER_PORT=8080
//	ATTEND_LOGGING_LEVEL=debug
//	ATTEND_EXTRACTION_STRATEGY=casing
//	ATTEND_EXTRACTION_LAST_OFFSET=2
//	ATTEND_EXTRACTION_FIRST_OFFSET=3
//	ATTEND_EXTRACTION_GRADE_SCHEME=numeric
//
// # Extraction Settings
//
// Documents from different sources lay their participant rows out differently.
// The extraction section picks the field strategy (positional or casing), the
// token offsets of the positional strategy, the institution prefix that marks a
// school header, the month and year of the sign-in timestamp, and whether the
// backend delivers plain text lines or table rows.
package config
