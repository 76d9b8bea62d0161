package fingerprint

import (
	"strings"
	"testing"
)

func TestCompare_IdenticalFingerprints(t *testing.T) {
	fingerprint1 := &TableFingerprint{Hash: "same_hash_12345"}
	fingerprint2 := &TableFingerprint{Hash: "same_hash_12345"}

	if err := Compare(fingerprint1, fingerprint2); err != nil {
		t.Errorf("Identical fingerprints should match, got error: %v", err)
	}
}

func TestCompare_DifferentFingerprints(t *testing.T) {
	fingerprint1 := &TableFingerprint{Hash: "hash_12345"}
	fingerprint2 := &TableFingerprint{Hash: "hash_67890"}

	err := Compare(fingerprint1, fingerprint2)
	if err == nil {
		t.Fatal("Different fingerprints should not match")
	}

	for _, substring := range []string{"table fingerprint mismatch", "hash_12345", "hash_67890"} {
		if !strings.Contains(err.Error(), substring) {
			t.Errorf("Error message should contain '%s', got: %s", substring, err.Error())
		}
	}
}

func TestCompare_TruncatesLongHashes(t *testing.T) {
	expected := &TableFingerprint{Hash: strings.Repeat("a", 64)}
	actual := &TableFingerprint{Hash: strings.Repeat("b", 64)}

	err := Compare(expected, actual)
	if err == nil {
		t.Fatal("Different fingerprints should not match")
	}
	if strings.Contains(err.Error(), strings.Repeat("a", 17)) {
		t.Errorf("Expected hash preview to be truncated to 16 characters, got: %s", err.Error())
	}
	if !strings.Contains(err.Error(), strings.Repeat("b", 16)) {
		t.Errorf("Expected actual hash preview, got: %s", err.Error())
	}
}
