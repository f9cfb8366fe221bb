// Package export turns a stored résumé into a downloadable artifact.
package export

import (
	"context"
	"strings"
	"time"

	"curriculo/internal/apperror"
	"curriculo/internal/emit"
	"curriculo/internal/render"
	"curriculo/internal/resume"
)

// Format is a downloadable artifact type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

const pdfContentType = "application/pdf"

// ParseFormat accepts "pdf" and "docx" in any case.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatPDF, FormatDOCX:
		return f, nil
	default:
		return "", apperror.Validation("unsupported export format")
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatDOCX {
		return emit.DocxContentType
	}
	return pdfContentType
}

// Artifact 是一次导出的结果。
type Artifact struct {
	Format      Format
	Filename    string
	ContentType string
	Data        []byte
}

// Exporter renders snapshots and emits them in the requested format.
type Exporter struct {
	engine emit.Engine
	now    func() time.Time
}

// New builds an Exporter. A nil engine makes PDF exports unavailable.
func New(engine emit.Engine) *Exporter {
	return &Exporter{engine: engine, now: time.Now}
}

// Layout renders snap with its template.
func Layout(snap resume.Snapshot) render.Layout {
	return render.Render(snap.Content, snap.Theme, snap.TemplateID)
}

// Preview returns the print markup for snap.
func Preview(snap resume.Snapshot) ([]byte, error) {
	return emit.Markup(Layout(snap), snap.Title)
}

// Filename is the download name of snap exported as format at the given time.
func Filename(snap resume.Snapshot, format Format, at time.Time) string {
	return emit.FileBaseName(snap.Content.Header, snap.Title, at) + "." + string(format)
}

// Export produces the artifact for snap.
func (e *Exporter) Export(ctx context.Context, snap resume.Snapshot, format Format) (Artifact, error) {
	l := Layout(snap)

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatPDF:
		data, err = emit.PDF(ctx, e.engine, l, snap.Title)
	case FormatDOCX:
		data, err = emit.DOCX(l)
	default:
		return Artifact{}, apperror.Validation("unsupported export format")
	}
	if err != nil {
		return Artifact{}, err
	}

	return Artifact{
		Format:      format,
		Filename:    Filename(snap, format, e.now()),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}
