package chunking

// RecursiveCharacterChunker splits text on progressively finer separators and
// merges the resulting units into windows of at most chunkSize code points,
// carrying the last overlap code points of each chunk into the next one.
type RecursiveCharacterChunker struct {
	chunkSize int
	overlap   int
	tiers     []tier
}

// NewRecursiveCharacterChunker creates a chunker, rejecting a non-positive
// chunkSize and an overlap outside [0, chunkSize).
func NewRecursiveCharacterChunker(chunkSize, overlap int) (*RecursiveCharacterChunker, error) {
	cfg := Config{ChunkSize: chunkSize, Overlap: overlap, Strategy: StrategyRecursive}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RecursiveCharacterChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
		tiers:     defaultTiers,
	}, nil
}

// ChunkText splits text into ordered chunks. Empty input yields no chunks.
func (c *RecursiveCharacterChunker) ChunkText(text string) ([]string, error) {
	runes := []rune(text)
	spans := c.chunkSpans(runes)

	chunks := make([]string, len(spans))
	for i, s := range spans {
		chunks[i] = string(runes[s.start:s.end])
	}
	return chunks, nil
}

func (c *RecursiveCharacterChunker) chunkSpans(runes []rune) []span {
	if len(runes) == 0 {
		return nil
	}
	units := c.split(runes, 0, len(runes), 0, nil)
	return c.merge(units)
}

// split appends the atomic units of runes[lo:hi] to out. Separators become
// units of their own so the merge sees the original text unchanged.
func (c *RecursiveCharacterChunker) split(runes []rune, lo, hi, level int, out []span) []span {
	if hi-lo <= c.chunkSize {
		return append(out, span{lo, hi})
	}

	for ; level < len(c.tiers); level++ {
		seps := c.tiers[level].find(runes, lo, hi)
		if len(seps) == 0 {
			continue
		}

		pos := lo
		for _, sep := range seps {
			if sep.start > pos {
				out = c.split(runes, pos, sep.start, level+1, out)
			}
			out = c.split(runes, sep.start, sep.end, level+1, out)
			pos = sep.end
		}
		if hi > pos {
			out = c.split(runes, pos, hi, level+1, out)
		}
		return out
	}

	// character tier
	for i := lo; i < hi; i++ {
		out = append(out, span{i, i + 1})
	}
	return out
}

// merge packs contiguous units greedily. Every unit is at most chunkSize long,
// so after shrinking the carried overlap the next unit always fits and each
// chunk after the first advances by at least one unit.
func (c *RecursiveCharacterChunker) merge(units []span) []span {
	var chunks []span
	start, end := units[0].start, units[0].start

	for _, u := range units {
		if u.end-start <= c.chunkSize {
			end = u.end
			continue
		}

		chunks = append(chunks, span{start, end})

		carry := min(c.overlap, end-start)
		if room := c.chunkSize - u.len(); carry > room {
			carry = room
		}
		start = end - carry
		end = u.end
	}

	if end > start {
		chunks = append(chunks, span{start, end})
	}
	return chunks
}
