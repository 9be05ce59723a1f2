package corpus

import "fmt"

// DataFormatError reports a malformed or corrupt input record. Single
// occurrences are skipped and counted; the loader fails wholesale only
// when the malformed rate passes the configured threshold.
type DataFormatError struct {
	Path   string
	Line   int
	Reason string
}

func (e *DataFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("corpus: %s line %d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("corpus: %s: %s", e.Path, e.Reason)
}
