package emit

import (
	"context"
	"errors"

	"curriculo/internal/apperror"
	"curriculo/internal/render"
)

// Engine prints HTML markup to PDF.
type Engine interface {
	Render(ctx context.Context, html []byte) ([]byte, error)
}

// PDF prints the layout's markup through engine.
func PDF(ctx context.Context, engine Engine, l render.Layout, title string) ([]byte, error) {
	if engine == nil {
		return nil, apperror.Unavailable("pdf engine is not configured")
	}
	markup, err := Markup(l, title)
	if err != nil {
		return nil, err
	}
	out, err := engine.Render(ctx, markup)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.UpstreamTimeout("pdf rendering timed out", err)
		}
		return nil, apperror.Upstream("pdf rendering failed", err)
	}
	if len(out) == 0 {
		return nil, apperror.Upstream("pdf engine returned an empty document", nil)
	}
	return out, nil
}
