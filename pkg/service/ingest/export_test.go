package ingest

// SplitCSVLine is exported for testing
var SplitCSVLine = splitCSVLine

// NormalizeTimestamp is exported for testing
var NormalizeTimestamp = normalizeTimestamp
