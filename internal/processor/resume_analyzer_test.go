package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/parser"
	"resume-analyzer-go/internal/types"
)

const sampleResume = "John Smith\nSoftware Engineer\njohn.smith@example.com | 555-123-4567\nSkills: python sql java\nLed ML team"

// MockDocumentDecoder 模拟文档解码器，按路径返回预设文本
type MockDocumentDecoder struct {
	texts map[string]string
	errs  map[string]error
	delay time.Duration
	calls atomic.Int32
}

func (m *MockDocumentDecoder) Decode(ctx context.Context, path string) (string, map[string]interface{}, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", nil, &DecodeError{Kind: DecodeReadFailure, Path: path, Err: ctx.Err()}
		}
	}
	if err, ok := m.errs[path]; ok {
		return "", nil, err
	}
	return m.texts[path], map[string]interface{}{parser.MetaSourcePath: path}, nil
}

func (m *MockDocumentDecoder) DecodeDocument(ctx context.Context, doc types.RawDocument) (string, map[string]interface{}, error) {
	return m.Decode(ctx, doc.URI)
}

func newTestAnalyzer(t *testing.T, decoder DocumentDecoder, setOpts ...SettingOpt) *ResumeAnalyzer {
	t.Helper()
	var seq atomic.Int32
	base := []SettingOpt{
		WithsetClock(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }),
		WithsetTimelocation(time.UTC),
		WithsetIDGenerator(func() string { return fmt.Sprintf("doc-%d", seq.Add(1)) }),
	}
	a, err := CreateAnalyzer(
		[]ComponentOpt{
			WithcompDecoder(decoder),
			WithcompNameExtractor(parser.NewNameExtractor()),
			WithcompSkillMatcher(parser.NewSkillMatcher(nil)),
		},
		append(base, setOpts...),
	)
	require.NoError(t, err)
	return a
}

func TestCreateAnalyzer_RequiresComponents(t *testing.T) {
	_, err := CreateAnalyzer(nil, nil)
	assert.ErrorIs(t, err, ErrNameExtractorNotInit)

	_, err = CreateAnalyzer([]ComponentOpt{WithcompNameExtractor(parser.NewNameExtractor())}, nil)
	assert.ErrorIs(t, err, ErrSkillMatcherNotInit)

	a, err := CreateAnalyzer([]ComponentOpt{
		WithcompNameExtractor(parser.NewNameExtractor()),
		WithcompSkillMatcher(parser.NewSkillMatcher(nil)),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultWorkers, a.Settings().Workers)
	assert.Equal(t, constants.DefaultDocumentTimeout, a.Settings().DocumentTimeout)
	assert.NotNil(t, a.Settings().Logger)
}

func TestSettingOpts_IgnoreInvalidValues(t *testing.T) {
	a := newTestAnalyzer(t, NewDecoder(),
		WithsetWorkers(0),
		WithsetDocumentTimeout(-time.Second),
		WithsetLogger(nil),
		WithsetTimelocation(nil),
	)
	s := a.Settings()
	assert.Equal(t, constants.DefaultWorkers, s.Workers)
	assert.Equal(t, constants.DefaultDocumentTimeout, s.DocumentTimeout)
	assert.NotNil(t, s.Logger)
	assert.Equal(t, time.Local, s.TimeLocation)
}

func TestResumeAnalyzer_Extract(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	result := a.Extract(context.Background(), sampleResume)
	require.NotNil(t, result)
	require.NotNil(t, result.Name)
	require.NotNil(t, result.Email)
	require.NotNil(t, result.Phone)
	assert.Equal(t, "John Smith", *result.Name)
	assert.Equal(t, "john.smith@example.com", *result.Email)
	assert.Equal(t, "555-123-4567", *result.Phone)
	assert.Equal(t, []string{"Python", "Java", "SQL"}, result.Skills)
}

func TestResumeAnalyzer_Extract_Empty(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	for _, text := range []string{"", "   \n\t "} {
		result := a.Extract(context.Background(), text)
		require.NotNil(t, result)
		assert.True(t, result.IsEmpty(), "input %q", text)
		assert.Nil(t, result.Name)
		assert.Nil(t, result.Email)
		assert.Nil(t, result.Phone)
		assert.NotNil(t, result.Skills)
		assert.Empty(t, result.Skills)
	}
}

func TestResumeAnalyzer_Extract_NameNotFound(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	// 有文本但两种姓名策略都失败时才使用占位值
	result := a.Extract(context.Background(), "resume\n555-123-4567")
	require.NotNil(t, result.Name)
	assert.Equal(t, constants.NameNotFound, *result.Name)
	assert.False(t, result.IsEmpty())
}

func TestResumeAnalyzer_Extract_WithContextualMatching(t *testing.T) {
	a, err := CreateAnalyzer([]ComponentOpt{
		WithcompNameExtractor(parser.NewNameExtractor()),
		WithcompSkillMatcher(parser.NewSkillMatcher(nil, parser.WithLanguageAnalyzer(parser.NewRuleAnalyzer()))),
	}, nil)
	require.NoError(t, err)

	result := a.Extract(context.Background(), "Jane Doe\nExperienced in data analysis and machine learning")
	assert.Contains(t, result.Skills, "Data Analysis")
	assert.Contains(t, result.Skills, "Machine Learning")
}

func TestResumeAnalyzer_Inspect(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	ins := a.Inspect(context.Background(), "John Smith\nKnows python. Writes sql!")
	assert.Equal(t, "john smith knows python. writes sql!", ins.Cleaned)
	assert.Equal(t, []string{"john", "smith", "knows", "python.", "writes", "sql!"}, ins.Words)
	assert.Equal(t, []string{"john smith knows python", "writes sql"}, ins.Sentences)
	assert.Equal(t, "John Smith", ins.Name)
	assert.Empty(t, ins.Email)
	assert.Empty(t, ins.LiteralSkills)
	assert.Empty(t, ins.ContextSkills)
	assert.Contains(t, ins.ContextError, parser.ErrAnalyzerUnavailable.Error())
	assert.Empty(t, ins.Combined)
}

func TestResumeAnalyzer_AnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "john.txt", []byte(sampleResume))
	a := newTestAnalyzer(t, NewDecoder())

	report, err := a.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "doc-1", report.DocumentID)
	assert.Equal(t, path, report.SourcePath)
	assert.Equal(t, types.FormatText, report.Format)
	assert.Empty(t, report.Error)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), report.ProcessedAt)
	assert.Equal(t, "text", report.Metadata[parser.MetaBackend])
	assert.Equal(t, "John Smith", *report.Result.Name)
	assert.Equal(t, []string{"Python", "Java", "SQL"}, report.Result.Skills)
}

func TestResumeAnalyzer_AnalyzeFile_DecodeFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resume.odt", []byte("whatever"))

	var buf bytes.Buffer
	log := zerolog.New(&buf)
	a := newTestAnalyzer(t, NewDecoder(), WithsetLogger(&log))

	report, err := a.AnalyzeFile(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecodeFailed)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	var procErr *ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "decode", procErr.Op)
	assert.Equal(t, path, procErr.Path)

	require.NotNil(t, report, "解码失败也要返回报告")
	assert.True(t, report.Result.IsEmpty())
	assert.NotNil(t, report.Result.Skills)
	assert.Contains(t, report.Error, "unsupported_format")
	assert.Contains(t, buf.String(), "doc-1")
}

func TestResumeAnalyzer_RequiresDecoder(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	_, err := a.AnalyzeFile(context.Background(), "x.txt")
	assert.ErrorIs(t, err, ErrDecoderNotInit)
	_, err = a.AnalyzeBatch(context.Background(), []string{"x.txt"})
	assert.ErrorIs(t, err, ErrDecoderNotInit)
	_, err = a.AnalyzeDocument(context.Background(), types.RawDocument{})
	assert.ErrorIs(t, err, ErrDecoderNotInit)
}

func TestResumeAnalyzer_AnalyzeDocument(t *testing.T) {
	a := newTestAnalyzer(t, NewDecoder())

	report, err := a.AnalyzeDocument(context.Background(), types.RawDocument{
		URI:     "upload://jane.txt",
		Format:  types.FormatText,
		Content: []byte("Jane Doe\njane@example.com\nc++ and java"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", *report.Result.Name)
	assert.Equal(t, "jane@example.com", *report.Result.Email)
	assert.Equal(t, []string{"Java", "c++"}, report.Result.Skills)
}

func TestResumeAnalyzer_AnalyzeBatch_PreservesOrder(t *testing.T) {
	decoder := &MockDocumentDecoder{
		texts: map[string]string{
			"a.pdf": "Alice Brown\npython",
			"c.pdf": "Carol White\nsql",
			"d.pdf": "Dave Green\njava",
		},
		errs: map[string]error{
			"b.pdf": &DecodeError{Kind: DecodeReadFailure, Path: "b.pdf", Err: errors.New("encrypted")},
		},
		delay: 5 * time.Millisecond,
	}
	a := newTestAnalyzer(t, decoder, WithsetWorkers(2))

	reports, err := a.AnalyzeBatch(context.Background(), []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"})
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.Equal(t, "Alice Brown", *reports[0].Result.Name)
	assert.Equal(t, []string{"Python"}, reports[0].Result.Skills)
	assert.Contains(t, reports[1].Error, "encrypted")
	assert.True(t, reports[1].Result.IsEmpty())
	assert.Equal(t, "Carol White", *reports[2].Result.Name)
	assert.Equal(t, "Dave Green", *reports[3].Result.Name)
	assert.Equal(t, int32(4), decoder.calls.Load())

	ids := map[string]bool{}
	for _, r := range reports {
		ids[r.DocumentID] = true
	}
	assert.Len(t, ids, 4, "每份报告的ID应唯一")
}

func TestResumeAnalyzer_AnalyzeBatch_DocumentTimeout(t *testing.T) {
	decoder := &MockDocumentDecoder{
		texts: map[string]string{"slow.pdf": "Slow Person"},
		delay: time.Second,
	}
	a := newTestAnalyzer(t, decoder, WithsetDocumentTimeout(20*time.Millisecond))

	reports, err := a.AnalyzeBatch(context.Background(), []string{"slow.pdf"})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Contains(t, reports[0].Error, context.DeadlineExceeded.Error())
}

func TestResumeAnalyzer_AnalyzeBatch_Cancelled(t *testing.T) {
	decoder := &MockDocumentDecoder{texts: map[string]string{}}
	a := newTestAnalyzer(t, decoder)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.AnalyzeBatch(ctx, []string{"a.pdf", "b.pdf"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResumeAnalyzer_AnalyzeDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", []byte("Bob Stone\njava"))
	writeFile(t, dir, "a.txt", []byte("Amy Lee\npython"))
	writeFile(t, dir, "notes.md", []byte("ignored"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0755))

	a := newTestAnalyzer(t, NewDecoder())

	reports, err := a.AnalyzeDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, filepath.Join(dir, "a.txt"), reports[0].SourcePath)
	assert.Equal(t, "Amy Lee", *reports[0].Result.Name)
	assert.Equal(t, filepath.Join(dir, "b.txt"), reports[1].SourcePath)
}

func TestResumeAnalyzer_AnalyzeDir_Errors(t *testing.T) {
	a := newTestAnalyzer(t, NewDecoder())

	_, err := a.AnalyzeDir(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrListFilesFailed)
	assert.ErrorIs(t, err, os.ErrNotExist)

	reports, err := a.AnalyzeDir(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, reports)
	assert.Empty(t, reports)
}

func TestResumeAnalyzer_AnalyzeFile_EmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scanned.txt", []byte(" \n\n "))
	a := newTestAnalyzer(t, NewDecoder())

	report, err := a.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, report.Error)
	assert.True(t, report.Result.IsEmpty())
	assert.Nil(t, report.Result.Name)
}
