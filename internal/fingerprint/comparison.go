package fingerprint

import (
	"fmt"
)

// Compare returns an error when the table changed between the two readings
func Compare(expected, actual *TableFingerprint) error {
	if expected.Hash == actual.Hash {
		return nil
	}

	return fmt.Errorf("table fingerprint mismatch - expected: %s, actual: %s",
		preview(expected.Hash), preview(actual.Hash))
}

func preview(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}
