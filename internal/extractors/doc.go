// Package extractors groups the content extractor implementations.
// Each subpackage handles one source format and produces positioned chunks
// through the driven.Extractor port.
package extractors
