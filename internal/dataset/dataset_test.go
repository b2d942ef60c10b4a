package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobSkillsCSV = "\ufeffjob_link,job_skills\n" +
	"https://example.com/1,\"Python, SQL, Machine Learning\"\n" +
	"https://example.com/2,\"Java, DevOps\"\n" +
	"https://example.com/3\n"

func TestRead(t *testing.T) {
	ds, err := Read(strings.NewReader(jobSkillsCSV), "job_skills")
	require.NoError(t, err)

	rows, cols := ds.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []string{"job_link", "job_skills"}, ds.Columns, "BOM应被去除")

	skills, err := ds.Column("Job_Skills")
	require.NoError(t, err)
	assert.Equal(t, []string{"Python, SQL, Machine Learning", "Java, DevOps", ""}, skills)
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader(""), "empty")
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestColumn_NotFound(t *testing.T) {
	ds, err := Read(strings.NewReader("a,b\n1,2\n"), "small")
	require.NoError(t, err)

	_, err = ds.Column("c")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestHead(t *testing.T) {
	ds, err := Read(strings.NewReader("a\n1\n2\n3\n"), "small")
	require.NoError(t, err)

	assert.Len(t, ds.Head(2), 2)
	assert.Len(t, ds.Head(10), 3)
	assert.Empty(t, ds.Head(-1))
}

func TestLoad_LogsShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_skills.csv")
	require.NoError(t, os.WriteFile(path, []byte(jobSkillsCSV), 0o644))

	buf := new(bytes.Buffer)
	logger := zerolog.New(buf)

	ds, err := Load(path, "Kaggle Dataset 1", &logger)
	require.NoError(t, err)
	assert.Equal(t, "Kaggle Dataset 1", ds.Name)
	assert.Contains(t, buf.String(), `"rows":3`)
	assert.Contains(t, buf.String(), `"columns":2`)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), "missing", nil)
	assert.Error(t, err)
}
