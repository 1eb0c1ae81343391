package chunking

// span is a half-open [start, end) range of code point offsets.
type span struct {
	start int
	end   int
}

func (s span) len() int { return s.end - s.start }

// tier finds the separator spans of one granularity inside runes[lo:hi].
type tier struct {
	name string
	find func(runes []rune, lo, hi int) []span
}

// defaultTiers lists the separator tiers from coarsest to finest. The character
// tier is implicit and handled by the splitter once every tier is exhausted.
var defaultTiers = []tier{
	{name: "paragraph", find: literal("\n\n")},
	{name: "line", find: literal("\n")},
	{name: "sentence", find: sentenceBreaks},
	{name: "word", find: literal(" ")},
}

func literal(sep string) func([]rune, int, int) []span {
	pattern := []rune(sep)
	return func(runes []rune, lo, hi int) []span {
		var seps []span
		for i := lo; i+len(pattern) <= hi; {
			if hasPrefixAt(runes, i, pattern) {
				seps = append(seps, span{i, i + len(pattern)})
				i += len(pattern)
				continue
			}
			i++
		}
		return seps
	}
}

// sentenceBreaks matches the space that follows a sentence terminal. The
// terminal itself stays with the sentence it closes.
func sentenceBreaks(runes []rune, lo, hi int) []span {
	var seps []span
	for i := lo; i+1 < hi; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if runes[i+1] == ' ' {
				seps = append(seps, span{i + 1, i + 2})
				i++
			}
		}
	}
	return seps
}

func hasPrefixAt(runes []rune, at int, pattern []rune) bool {
	for j, r := range pattern {
		if runes[at+j] != r {
			return false
		}
	}
	return true
}
