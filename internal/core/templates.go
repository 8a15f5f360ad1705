package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Template store errors.
var (
	ErrTemplateNotFound  = errors.New("template not found")
	ErrTemplateExists    = errors.New("template already exists")
	ErrInvalidTemplateID = errors.New("invalid template id")
)

// TemplateMatchThreshold is the minimum share of a template's headers that
// must appear in a file for the template to be suggested.
const TemplateMatchThreshold = 0.7

// CreateTemplate saves a mapping for reuse on later imports.
func (s *Service) CreateTemplate(ctx context.Context, t ImportTemplate) (*ImportTemplate, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return nil, fmt.Errorf("template name is required")
	}
	if strings.TrimSpace(t.JobID) == "" {
		return nil, fmt.Errorf("job id is required")
	}
	if len(t.Mapping) == 0 {
		return nil, fmt.Errorf("template mapping is empty")
	}

	created, err := s.store.CreateTemplate(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	s.logAudit(ctx, AuditEntry{
		Action:     ActionTemplateCreate,
		JobID:      created.JobID,
		TemplateID: created.ID,
		Reason:     created.Name,
	})
	return created, nil
}

// GetTemplate retrieves a template by ID.
func (s *Service) GetTemplate(ctx context.Context, id string) (*ImportTemplate, error) {
	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// ListTemplates returns all templates of a job opening.
func (s *Service) ListTemplates(ctx context.Context, jobID string) ([]ImportTemplate, error) {
	templates, err := s.store.ListTemplates(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// DeleteTemplate removes a template.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	s.logAudit(ctx, AuditEntry{Action: ActionTemplateDelete, TemplateID: id})
	return nil
}

// MatchTemplates returns the job's templates whose headers overlap the given
// headers by at least TemplateMatchThreshold, best match first.
func (s *Service) MatchTemplates(ctx context.Context, jobID string, csvHeaders []string) ([]TemplateMatch, error) {
	templates, err := s.ListTemplates(ctx, jobID)
	if err != nil {
		return nil, err
	}

	matches := make([]TemplateMatch, 0)
	for _, t := range templates {
		score := MatchTemplateHeaders(csvHeaders, t.CSVHeaders)
		if score >= TemplateMatchThreshold {
			matches = append(matches, TemplateMatch{Template: t, MatchScore: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	return matches, nil
}

// MatchTemplateHeaders returns the fraction of templateHeaders present in
// csvHeaders, compared case-insensitively.
func MatchTemplateHeaders(csvHeaders, templateHeaders []string) float64 {
	if len(templateHeaders) == 0 {
		return 0
	}

	csvSet := make(map[string]bool, len(csvHeaders))
	for _, h := range csvHeaders {
		csvSet[strings.ToLower(strings.TrimSpace(h))] = true
	}

	matched := 0
	for _, h := range templateHeaders {
		if csvSet[strings.ToLower(strings.TrimSpace(h))] {
			matched++
		}
	}

	return float64(matched) / float64(len(templateHeaders))
}
