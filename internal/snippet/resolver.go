// Package snippet turns an issue's file reference into a bounded,
// line-numbered excerpt centred on the issue's focus line.
package snippet

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"sonarlens/internal/sonar"
)

// DefaultContext is the window radius applied when the caller has no
// opinion.
const DefaultContext = 5

// Source is the slice of the API client the resolver needs. Accepting an
// interface here keeps the resolver testable without a server.
type Source interface {
	RawSource(ctx context.Context, fileKey, branch string) (string, error)
	SourceLines(ctx context.Context, fileKey, branch string) ([]sonar.SourceLine, error)
}

// Window is the rendered excerpt: [Start, End] inclusive, 1-based, with
// Focus inside it.
type Window struct {
	Start int
	End   int
	Focus int
	Lines []string
}

// Snippet is the resolver's product. Window is nil when the issue carries
// no line information; Content is always the whole file.
type Snippet struct {
	Content string
	Window  *Window
}

// Resolver fetches and windows source context for issues. It holds no
// per-call state and is safe for concurrent use.
type Resolver struct {
	src    Source
	branch string
	log    zerolog.Logger
}

// New builds a Resolver scoped to one branch (empty means the server's
// main branch).
func New(src Source, branch string, log zerolog.Logger) *Resolver {
	return &Resolver{src: src, branch: branch, log: log.With().Str("component", "snippet").Logger()}
}

// Resolve returns the snippet for an issue, or nil when no source context
// can be produced. It never returns an error caused by the network: a
// missing snippet degrades the display, it must not break the caller.
//
// The raw endpoint is tried first; any failure there, of whatever kind,
// switches to the structured endpoint. An empty-but-successful raw
// response is used as-is and does not trigger the fallback.
func (r *Resolver) Resolve(ctx context.Context, issue sonar.Issue, contextLines int) *Snippet {
	if issue.Component == "" {
		return nil
	}
	if contextLines <= 0 {
		contextLines = DefaultContext
	}

	content, ok := r.fetch(ctx, issue.Component)
	if !ok {
		return nil
	}

	focus := issue.FocusLine()
	if focus == 0 {
		return &Snippet{Content: content}
	}

	lines := strings.Split(content, "\n")
	total := len(lines)
	if focus > total {
		// Out-of-range focus clamps to the top of the file.
		focus = 1
	}

	start := focus - contextLines
	if start < 1 {
		start = 1
	}
	end := focus + contextLines
	if end > total {
		end = total
	}

	w := &Window{Start: start, End: end, Focus: focus}
	for n := start; n <= end; n++ {
		w.Lines = append(w.Lines, renderLine(n, lines[n-1], n == focus))
	}
	return &Snippet{Content: content, Window: w}
}

func (r *Resolver) fetch(ctx context.Context, fileKey string) (string, bool) {
	content, err := r.src.RawSource(ctx, fileKey, r.branch)
	if err == nil {
		return content, true
	}
	r.log.Debug().Err(err).Str("file", fileKey).Msg("raw source failed, trying structured endpoint")

	recs, err := r.src.SourceLines(ctx, fileKey, r.branch)
	if err != nil {
		r.log.Debug().Err(err).Str("file", fileKey).Msg("structured source failed")
		return "", false
	}
	parts := make([]string, len(recs))
	for i, rec := range recs {
		parts[i] = rec.Code
	}
	return strings.Join(parts, "\n"), true
}

// renderLine prefixes a source line with its number; the focus line gets
// a distinct marker.
func renderLine(n int, text string, focus bool) string {
	marker := " "
	if focus {
		marker = ">"
	}
	return fmt.Sprintf("%s%4d| %s", marker, n, text)
}
