package processor

import (
	"errors"
	"strings"
	"testing"

	"docsplit/file"
	"docsplit/internal/testdoc"
	"docsplit/pkg/chunking"
	"docsplit/text"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubExtractor struct {
	result *file.ExtractedText
	err    error
	calls  int
}

func (s *stubExtractor) Extract(doc file.Document) (*file.ExtractedText, error) {
	s.calls++
	return s.result, s.err
}

func newTestClient(t *testing.T, extractor Extractor, strategy string) *Client {
	t.Helper()
	cache, err := chunking.NewCache(4)
	require.NoError(t, err)
	return NewClient(extractor, cache, strategy, zaptest.NewLogger(t))
}

func TestClient_Chunk(t *testing.T) {
	client := newTestClient(t, &stubExtractor{}, "")

	chunks, err := client.Chunk("alpha beta gamma delta", 10, 3)
	require.NoError(t, err)
	assert.Equal(t, []chunking.Chunk{
		{ChunkID: 1, Content: "alpha beta"},
		{ChunkID: 2, Content: "eta gamma "},
		{ChunkID: 3, Content: "ma delta"},
	}, chunks)
}

func TestClient_ChunkInvalidConfig(t *testing.T) {
	client := newTestClient(t, &stubExtractor{}, "")

	for _, tc := range []struct{ size, overlap int }{{0, 0}, {-5, 0}, {10, -1}, {10, 10}, {10, 25}} {
		_, err := client.Chunk("some text", tc.size, tc.overlap)
		assert.True(t, errors.Is(err, chunking.ErrInvalidConfig), "size=%d overlap=%d", tc.size, tc.overlap)
	}
}

func TestClient_ChunkUnknownStrategy(t *testing.T) {
	client := newTestClient(t, &stubExtractor{}, "semantic")

	_, err := client.Chunk("some text", 10, 2)
	assert.True(t, errors.Is(err, chunking.ErrInvalidConfig))
}

func TestClient_Process(t *testing.T) {
	body := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)
	extractor := &stubExtractor{result: &file.ExtractedText{
		Text:   body,
		Kind:   file.KindEPUB,
		Method: file.MethodFallback,
	}}
	client := newTestClient(t, extractor, "")

	result, err := client.Process(file.Document{Filename: "fox.epub"}, 100, 20)
	require.NoError(t, err)

	assert.Equal(t, "fox.epub", result.FileName)
	assert.Equal(t, file.KindEPUB, result.Kind)
	assert.Equal(t, file.MethodFallback, result.Method)
	assert.Equal(t, len(result.Chunks), result.TotalChunks)
	assert.Greater(t, result.TotalChunks, 1)
	for i, c := range result.Chunks {
		assert.Equal(t, i+1, c.ChunkID)
		assert.NotEmpty(t, c.Content)
		assert.LessOrEqual(t, len([]rune(c.Content)), 100)
		assert.Contains(t, body, c.Content)
	}
	assert.True(t, strings.HasPrefix(body, result.Chunks[0].Content))
}

func TestClient_ProcessValidatesBeforeExtracting(t *testing.T) {
	extractor := &stubExtractor{result: &file.ExtractedText{Text: "unused"}}
	client := newTestClient(t, extractor, "")

	_, err := client.Process(file.Document{Filename: "a.pdf"}, 100, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, chunking.ErrInvalidConfig))
	assert.Zero(t, extractor.calls)
}

func TestClient_ProcessExtractionFailure(t *testing.T) {
	cause := &file.ExtractionError{Kind: file.KindPDF, Primary: errors.New("broken xref")}
	client := newTestClient(t, &stubExtractor{err: cause}, "")

	result, err := client.Process(file.Document{Filename: "a.pdf"}, 100, 10)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, file.ErrExtraction))
}

func TestClient_ProcessEndToEnd(t *testing.T) {
	logger := zaptest.NewLogger(t)
	core := file.NewCore(file.NewPDFExtractor(logger), file.NewEPUBExtractor(logger, 0), logger)
	cache, err := chunking.NewCache(0)
	require.NoError(t, err)
	client := NewClient(core, cache, chunking.StrategyRecursive, logger)

	t.Run("epub", func(t *testing.T) {
		data := testdoc.EPUB(
			testdoc.Chapter("One", "It was a bright cold day in April."),
			testdoc.Chapter("Two", "The clocks were striking thirteen."),
		)
		result, err := client.Process(file.Document{
			Data:         data,
			DeclaredType: "application/epub+zip",
			Filename:     "novel.epub",
		}, 1000, 100)
		require.NoError(t, err)

		assert.Equal(t, file.MethodStructured, result.Method)
		require.Equal(t, 1, result.TotalChunks)
		assert.Equal(t,
			"One One It was a bright cold day in April.\nTwo Two The clocks were striking thirteen.\n",
			result.Chunks[0].Content)
	})

	t.Run("pdf", func(t *testing.T) {
		result, err := client.Process(file.Document{
			Data:         testdoc.PDF("First page text.", "Second page text."),
			DeclaredType: "application/pdf",
			Filename:     "doc.pdf",
		}, 10, 2)
		require.NoError(t, err)
		assert.Equal(t, file.KindPDF, result.Kind)
		assert.Greater(t, result.TotalChunks, 2)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := client.Process(file.Document{
			Data:         []byte("just some notes"),
			DeclaredType: "text/plain",
			Filename:     "notes.txt",
		}, 1000, 100)
		assert.True(t, errors.Is(err, file.ErrUnsupportedFormat))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := client.Process(file.Document{
			Data:         testdoc.PDF(""),
			DeclaredType: "application/pdf",
			Filename:     "blank.pdf",
		}, 1000, 100)
		assert.True(t, errors.Is(err, text.ErrEmptyDocument))
	})
}
