package docgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/adapter"
)

var _ adapter.DocumentGenerator = (*TextGenerator)(nil)

// TextGenerator renders a plain-text resume from the selected profile. When
// the profile carries a prepared file it is used as-is; rendering only covers
// profiles without one.
type TextGenerator struct {
	outDir string
	log    *zerolog.Logger
}

func NewTextGenerator(outDir string, logger *zerolog.Logger) *TextGenerator {
	l := logger.With().Str("component", "DocGen").Logger()
	return &TextGenerator{outDir: outDir, log: &l}
}

func (g *TextGenerator) Generate(ctx context.Context, profile *model.UserProfile, resume *model.ResumeProfile, job *model.Job) (string, error) {
	if resume != nil && resume.FilePath != "" {
		if _, err := os.Stat(resume.FilePath); err == nil {
			return resume.FilePath, nil
		}
		g.log.Warn().Str("path", resume.FilePath).Msg("prepared resume file missing; rendering fallback")
	}

	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create docgen dir: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", profile.FullName)
	if profile.Email != "" {
		fmt.Fprintf(&b, "%s\n", profile.Email)
	}
	if profile.Phone != "" {
		fmt.Fprintf(&b, "%s\n", profile.Phone)
	}
	if profile.LinkedIn != "" {
		fmt.Fprintf(&b, "%s\n", profile.LinkedIn)
	}
	b.WriteString("\n")
	if resume != nil && len(resume.TargetRoles) > 0 {
		fmt.Fprintf(&b, "Target role: %s\n\n", strings.Join(resume.TargetRoles, ", "))
	}
	if len(profile.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(profile.Skills, ", "))
	}
	fmt.Fprintf(&b, "\nGenerated for %s at %s on %s\n", job.Title, job.Company, time.Now().Format("2006-01-02"))

	name := "resume"
	if resume != nil && resume.ID != "" {
		name = resume.ID
	}
	path := filepath.Join(g.outDir, fmt.Sprintf("%s-%s.txt", name, job.ID))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write resume artifact: %w", err)
	}
	return path, nil
}
