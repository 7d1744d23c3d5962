package ot

// Diff builds the operation that converts oldText into newText, for clients
// that submit whole-text saves rather than keystroke deltas. It retains the
// longest common prefix and suffix and replaces the middle, which is the
// minimal single-run edit.
func Diff(sessionID string, baseVersion int64, oldText, newText string) Operation {
	oldRunes := []rune(oldText)
	newRunes := []rune(newText)

	prefix := 0
	for prefix < len(oldRunes) && prefix < len(newRunes) && oldRunes[prefix] == newRunes[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < len(oldRunes)-prefix && suffix < len(newRunes)-prefix &&
		oldRunes[len(oldRunes)-1-suffix] == newRunes[len(newRunes)-1-suffix] {
		suffix++
	}

	b := NewBuilder(sessionID, baseVersion)
	b.Retain(prefix)
	b.Delete(len(oldRunes) - prefix - suffix)
	b.Insert(string(newRunes[prefix : len(newRunes)-suffix]))
	b.Retain(suffix)
	return b.Build()
}
