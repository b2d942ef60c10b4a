package processor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"resume-analyzer-go/internal/parser"
	"resume-analyzer-go/internal/tracing"
	"resume-analyzer-go/internal/types"
)

// MockTextExtractor 模拟文本提取器
type MockTextExtractor struct {
	text     string
	metadata map[string]interface{}
	err      error
	calls    int
}

func (m *MockTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	m.calls++
	return m.text, m.metadata, m.err
}

func (m *MockTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	m.calls++
	return m.text, m.metadata, m.err
}

func (m *MockTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	m.calls++
	return m.text, m.metadata, m.err
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want types.DocumentFormat
	}{
		{"resume.pdf", types.FormatPDF},
		{"RESUME.PDF", types.FormatPDF},
		{"cv.docx", types.FormatDOCX},
		{"notes.txt", types.FormatText},
		{"notes.text", types.FormatText},
		{"cv.doc", types.FormatUnknown},
		{"image.png", types.FormatUnknown},
		{"noext", types.FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.path))
			assert.Equal(t, tt.want != types.FormatUnknown, IsSupported(tt.path))
		})
	}
}

func TestNewDecoder_Defaults(t *testing.T) {
	d := NewDecoder()
	assert.True(t, d.Supports(types.FormatText))
	assert.False(t, d.Supports(types.FormatPDF))
	assert.False(t, d.Supports(types.FormatDOCX))

	d = NewDecoder(WithExtractor(types.FormatPDF, &MockTextExtractor{}), WithExtractor(types.FormatDOCX, nil))
	assert.True(t, d.Supports(types.FormatPDF))
	assert.False(t, d.Supports(types.FormatDOCX), "nil 提取器不应被注册")
}

func TestDecoder_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "photo.png", []byte("not a resume"))

	_, _, err := NewDecoder().Decode(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.False(t, errors.Is(err, ErrReadFailure))

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, DecodeUnsupportedFormat, decodeErr.Kind)
	assert.Equal(t, tracing.ErrorTypeUnsupported, decodeErr.ErrorType())
	assert.Contains(t, err.Error(), "unsupported_format")
}

func TestDecoder_RegisteredFormatWithoutExtractor(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resume.pdf", []byte("%PDF-1.4"))

	_, _, err := NewDecoder().Decode(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecoder_PlainText(t *testing.T) {
	dir := t.TempDir()

	t.Run("strips BOM and applies NFKC", func(t *testing.T) {
		path := writeFile(t, dir, "resume.txt", []byte("\xef\xbb\xbf\uff2a\uff4f\uff48\uff4e Smith\n\ufb01nance"))
		text, meta, err := NewDecoder().Decode(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "John Smith\nfinance", text)
		assert.Equal(t, "text", meta[parser.MetaBackend])
		assert.Equal(t, path, meta[parser.MetaSourcePath])
	})

	t.Run("invalid UTF-8 is replaced", func(t *testing.T) {
		path := writeFile(t, dir, "broken.txt", []byte("python \xff sql"))
		text, _, err := NewDecoder().Decode(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "python \uFFFD sql", text)
	})

	t.Run("missing file is a read failure", func(t *testing.T) {
		_, _, err := NewDecoder().Decode(context.Background(), filepath.Join(dir, "missing.txt"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrReadFailure)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestDecoder_ExtractorFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resume.pdf", []byte("%PDF-1.4"))

	t.Run("read failure", func(t *testing.T) {
		mock := &MockTextExtractor{err: errors.New("corrupt xref table")}
		_, _, err := NewDecoder(WithExtractor(types.FormatPDF, mock)).Decode(context.Background(), path)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrReadFailure)
		assert.Contains(t, err.Error(), "corrupt xref table")

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, types.FormatPDF, decodeErr.Format)
		assert.Equal(t, tracing.ErrorTypeDecode, decodeErr.ErrorType())
	})

	t.Run("deadline exceeded is classified as timeout", func(t *testing.T) {
		mock := &MockTextExtractor{err: context.DeadlineExceeded}
		_, _, err := NewDecoder(WithExtractor(types.FormatPDF, mock)).Decode(context.Background(), path)
		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, tracing.ErrorTypeTimeout, decodeErr.ErrorType())
	})
}

func TestDecoder_DelegatesToExtractor(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resume.pdf", []byte("%PDF-1.4"))
	mock := &MockTextExtractor{
		text:     "--- Page 1 ---\nJane Doe\n",
		metadata: map[string]interface{}{parser.MetaPageCount: 1},
	}

	text, meta, err := NewDecoder(WithExtractor(types.FormatPDF, mock)).Decode(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "--- Page 1 ---\nJane Doe\n", text)
	assert.Equal(t, 1, meta[parser.MetaPageCount])
	assert.Equal(t, 1, mock.calls)
}

func TestDecoder_DecodeDocument(t *testing.T) {
	d := NewDecoder()

	text, meta, err := d.DecodeDocument(context.Background(), types.RawDocument{
		URI:     "memory://resume.txt",
		Format:  types.FormatText,
		Content: []byte("Jane Doe\njane@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\njane@example.com", text)
	assert.Equal(t, "memory://resume.txt", meta[parser.MetaSourcePath])

	_, _, err = d.DecodeDocument(context.Background(), types.RawDocument{URI: "memory://cv.docx", Format: types.FormatDOCX})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resume.txt", []byte("hello"))

	doc, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, types.FormatText, doc.Format)
	assert.Equal(t, []byte("hello"), doc.Content)
	assert.Equal(t, path, doc.URI)

	_, err = ReadDocument(filepath.Join(dir, "resume.rtf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadDocument(filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, ErrReadFailure)
}

func TestDecodeErrorKind_String(t *testing.T) {
	assert.Equal(t, "unsupported_format", DecodeUnsupportedFormat.String())
	assert.Equal(t, "read_failure", DecodeReadFailure.String())
	assert.Equal(t, "unknown", DecodeErrorKind(0).String())
}

var (
	recorderOnce sync.Once
	recorder     *tracetest.SpanRecorder
)

// spanRecorder 安装记录所有span的全局 TracerProvider
// 包级 tracer 只会委托给第一次设置的 provider，所以全包共用一个
func spanRecorder() *tracetest.SpanRecorder {
	recorderOnce.Do(func() {
		recorder = tracetest.NewSpanRecorder()
		otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	})
	return recorder
}

// spanAttr 找到 path 对应的 span 上的字符串属性
func spanAttr(t *testing.T, sr *tracetest.SpanRecorder, spanName, path, key string) string {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() != spanName {
			continue
		}
		var matched bool
		var value string
		for _, kv := range span.Attributes() {
			switch string(kv.Key) {
			case "document.path":
				matched = kv.Value.AsString() == tracing.SafePath(path)
			case key:
				value = kv.Value.AsString()
			}
		}
		if matched {
			return value
		}
	}
	t.Fatalf("no %s span for %s", spanName, path)
	return ""
}

func TestDecoder_RecordsRedactedPreview(t *testing.T) {
	sr := spanRecorder()
	dir := t.TempDir()
	path := writeFile(t, dir, "preview.txt", []byte("Jane Doe\njane@example.com\n555.123.4567\n\nSkills: go"))

	_, _, err := NewDecoder().Decode(context.Background(), path)
	require.NoError(t, err)

	preview := spanAttr(t, sr, "Decoder.Decode", path, "document.preview")
	assert.Equal(t, "Jane Doe [email] [phone] Skills: go", preview)
	assert.NotContains(t, preview, "jane@example.com")
}
