package langdetect

import "unicode/utf8"

// MaxNGramLength is the longest n-gram, in runes, used for detection.
const MaxNGramLength = 3

// extractNGrams slides a window of MaxNGramLength runes over normalized text
// and emits every n-gram ending at each position. A space may only appear at
// the edge of an n-gram, so no n-gram spans two words.
func extractNGrams(normalized string) []string {
	var window [MaxNGramLength]rune
	size := 0
	grams := make([]string, 0, MaxNGramLength*utf8.RuneCountInString(normalized))

	for _, r := range normalized {
		if size == MaxNGramLength {
			copy(window[:], window[1:])
			size--
		}
		window[size] = r
		size++

		for n := 1; n <= size; n++ {
			gram := window[size-n : size]
			if !isValidNGram(gram) {
				continue
			}
			grams = append(grams, string(gram))
		}
	}
	return grams
}

func isValidNGram(gram []rune) bool {
	if len(gram) == 1 {
		return gram[0] != ' '
	}
	for _, r := range gram[1 : len(gram)-1] {
		if r == ' ' {
			return false
		}
	}
	return true
}

// validNGramLength reports whether gram is between 1 and MaxNGramLength runes
// and returns that length.
func validNGramLength(gram string) (int, bool) {
	n := utf8.RuneCountInString(gram)
	return n, n >= 1 && n <= MaxNGramLength
}
