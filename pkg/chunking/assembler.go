package chunking

// Assemble numbers chunk contents from 1 in emission order.
func Assemble(contents []string) ChunkSet {
	chunks := make([]Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = Chunk{
			ChunkID: i + 1,
			Content: content,
		}
	}
	return ChunkSet{
		TotalChunks: len(chunks),
		Chunks:      chunks,
	}
}
