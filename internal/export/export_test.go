package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curriculo/internal/apperror"
	"curriculo/internal/resume"
)

type fakeEngine struct {
	calls int
	err   error
}

func (f *fakeEngine) Render(context.Context, []byte) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

func snapshot() resume.Snapshot {
	content := resume.DefaultContent()
	content.Header.FullName = "Maria José"
	return resume.Snapshot{
		Title:      "Meu CV",
		TemplateID: resume.TemplateProfessional,
		Content:    content,
		Theme:      resume.DefaultTheme(),
	}
}

func fixedExporter(engine *fakeEngine) *Exporter {
	e := New(engine)
	e.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return e
}

func TestExportPDF(t *testing.T) {
	engine := &fakeEngine{}
	art, err := fixedExporter(engine).Export(context.Background(), snapshot(), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, "Curriculo_Maria_Jose_2025-01-02.pdf", art.Filename)
	assert.Equal(t, "application/pdf", art.ContentType)
	assert.Equal(t, "%PDF-1.7 fake", string(art.Data))
}

func TestExportDOCXSkipsEngine(t *testing.T) {
	engine := &fakeEngine{}
	art, err := fixedExporter(engine).Export(context.Background(), snapshot(), FormatDOCX)
	require.NoError(t, err)
	assert.Zero(t, engine.calls)
	assert.Equal(t, "Curriculo_Maria_Jose_2025-01-02.docx", art.Filename)
	assert.Equal(t, []byte("PK"), art.Data[:2])
}

func TestExportPDFWithoutEngine(t *testing.T) {
	_, err := New(nil).Export(context.Background(), snapshot(), FormatPDF)
	assert.Equal(t, apperror.KindUnavailable, apperror.KindOf(err))
}

func TestExportEngineFailure(t *testing.T) {
	_, err := fixedExporter(&fakeEngine{err: errors.New("boom")}).Export(context.Background(), snapshot(), FormatPDF)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" DOCX ")
	require.NoError(t, err)
	assert.Equal(t, FormatDOCX, f)

	_, err = ParseFormat("odt")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestPreviewIsHTML(t *testing.T) {
	out, err := Preview(snapshot())
	require.NoError(t, err)
	assert.Contains(t, string(out), "<!DOCTYPE html>")
	assert.Contains(t, string(out), "Maria José")
}
