// Package aiimport turns an uploaded résumé model (image, PDF, document or
// text) into a normalized snapshot with the help of a hosted generative model.
package aiimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"curriculo/internal/apperror"
	"curriculo/internal/normalize"
	"curriculo/internal/resume"
)

// DefaultTimeout bounds the single provider call of an import.
const DefaultTimeout = 90 * time.Second

// Options configure an Importer. Providers missing from the list are
// reported as unavailable when selected.
type Options struct {
	Providers     []Provider
	DefaultModels map[string]string
	Timeout       time.Duration
	MaxFileBytes  int64
	Scanner       Scanner
	Normalizer    *normalize.Normalizer
	Logger        *slog.Logger
}

// Importer runs one provider call per import with no retries.
type Importer struct {
	providers  map[string]Provider
	models     map[string]string
	timeout    time.Duration
	maxBytes   int64
	scanner    Scanner
	normalizer *normalize.Normalizer
	logger     *slog.Logger
}

func NewImporter(opts Options) *Importer {
	imp := &Importer{
		providers:  make(map[string]Provider, len(opts.Providers)),
		models:     opts.DefaultModels,
		timeout:    opts.Timeout,
		maxBytes:   opts.MaxFileBytes,
		scanner:    opts.Scanner,
		normalizer: opts.Normalizer,
		logger:     opts.Logger,
	}
	for _, p := range opts.Providers {
		if p != nil {
			imp.providers[p.Name()] = p
		}
	}
	if imp.timeout <= 0 {
		imp.timeout = DefaultTimeout
	}
	if imp.maxBytes <= 0 {
		imp.maxBytes = MaxFileBytes
	}
	if imp.normalizer == nil {
		imp.normalizer = normalize.New(nil)
	}
	if imp.logger == nil {
		imp.logger = slog.Default()
	}
	return imp
}

// Input is one import request.
type Input struct {
	File     File
	Provider string
	Model    string
	Current  normalize.Current
}

// Result is the normalized snapshot plus the provider that produced it.
type Result struct {
	Snapshot resume.Snapshot
	Provider string
	Model    string
}

// ResolveModel caps a user-supplied model name, falling back to def.
func ResolveModel(name, def string) string {
	name = strings.Join(strings.Fields(name), " ")
	if utf8.RuneCountInString(name) > maxModelName {
		name = truncateRunes(name, maxModelName)
	}
	if name == "" {
		return def
	}
	return name
}

// Import validates the upload, calls the selected provider once and
// normalizes its answer against in.Current.
func (imp *Importer) Import(ctx context.Context, in Input) (Result, error) {
	if len(in.File.Data) == 0 {
		return Result{}, apperror.Validation("empty file")
	}
	if int64(len(in.File.Data)) > imp.maxBytes {
		return Result{}, apperror.TooLarge(fmt.Sprintf("file exceeds the %s limit", sizeLabel(imp.maxBytes)))
	}

	name, err := ResolveProvider(in.Provider)
	if err != nil {
		return Result{}, err
	}
	provider, ok := imp.providers[name]
	if !ok {
		return Result{}, apperror.Unavailable(name + " is not configured")
	}
	model := ResolveModel(in.Model, imp.models[name])

	if imp.scanner != nil {
		if err := imp.scanner.Scan(ctx, in.File.Data); err != nil {
			if errors.Is(err, ErrInfected) {
				return Result{}, apperror.Validation("malicious file detected")
			}
			imp.logger.Error("aiimport: scan upload failed", slog.Any("error", err))
			return Result{}, apperror.New(apperror.KindUnavailable, "virus scanner unavailable", err)
		}
	}

	file := in.File
	if documentKind(file) != "" {
		text, err := extractDocumentText(file)
		if err != nil {
			return Result{}, apperror.New(apperror.KindValidation, "could not read the uploaded document", err)
		}
		if text == "" {
			return Result{}, apperror.Validation("uploaded document has no text")
		}
		file.Text = text
	}

	callCtx, cancel := context.WithTimeout(ctx, imp.timeout)
	defer cancel()

	started := time.Now()
	raw, err := provider.Generate(callCtx, Request{
		Model:        model,
		SystemPrompt: SystemPrompt,
		Instruction:  UserInstruction,
		File:         file,
	})
	if err != nil {
		imp.logger.Warn("aiimport: provider call failed",
			slog.String("provider", name),
			slog.String("model", model),
			slog.Duration("elapsed", time.Since(started)),
			slog.Any("error", err),
		)
		return Result{}, classifyProviderError(callCtx, err)
	}

	draft, err := ExtractJSON(raw)
	if err != nil {
		return Result{}, err
	}
	if _, ok := draft.(normalize.Object); !ok {
		return Result{}, apperror.Upstream("AI returned a structure outside the expected format", nil)
	}

	imp.logger.Info("aiimport: draft received",
		slog.String("provider", name),
		slog.String("model", model),
		slog.Duration("elapsed", time.Since(started)),
	)

	return Result{
		Snapshot: imp.normalizer.Normalize(draft, in.Current),
		Provider: name,
		Model:    model,
	}, nil
}

func classifyProviderError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperror.UpstreamTimeout("AI provider request timed out", err)
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Upstream("could not call the AI provider", err)
}

// sizeLabel 以最大的整除单位显示字节数。
func sizeLabel(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
