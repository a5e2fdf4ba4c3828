package phonetic

import "strings"

const stressMarkedVowels = "aeiou@"

// ARPAbetTail extracts the rhyme tail from an ARPAbet pronunciation such as
// "K AE1 T". The tail starts at the last vowel carrying primary (1) or
// secondary (2) stress.
func ARPAbetTail(pronunciation string) (Tail, bool) {
	phonemes := strings.Fields(pronunciation)
	for i := len(phonemes) - 1; i >= 0; i-- {
		p := phonemes[i]
		if strings.ContainsRune("AEIOU", rune(p[0])) && strings.ContainsRune("12", rune(p[len(p)-1])) {
			return Tail(append([]string(nil), phonemes[i:]...)), true
		}
	}
	return nil, false
}

// StressMarkedTail extracts the rhyme tail from a phonetiser payload that
// marks primary stress with the digit 1. The tail starts at the first vowel
// at or after the last stress mark; a payload without stress marks is scanned
// from its start.
func StressMarkedTail(payload string) (Tail, bool) {
	start := strings.LastIndexByte(payload, '1')
	if start < 0 {
		start = 0
	}
	for i := start; i < len(payload); i++ {
		if strings.IndexByte(stressMarkedVowels, payload[i]) >= 0 {
			tail := Parse(payload[i:])
			if len(tail) == 0 {
				return nil, false
			}
			return tail, true
		}
	}
	return nil, false
}
