package service

import (
	"context"
	"fmt"

	"pcps/internal/family/models"
	"pcps/internal/policy"
	targetmodels "pcps/internal/targets/models"
	dErrors "pcps/pkg/domain-errors"
	"pcps/pkg/requestcontext"
)

// Template kinds served to editors that build a new entry client-side.
const (
	TemplateDocument = "document"
	TemplateChild    = "child"
	TemplateGuardian = "guardian"
	TemplateDevice   = "device"
	TemplatePolicy   = "policy"
	TemplateTarget   = "target"
)

// Template returns a freshly allocated value of the given kind. Every call
// yields new identifiers; nothing is stored.
func (s *Service) Template(ctx context.Context, kind string) (any, error) {
	switch kind {
	case TemplateDocument:
		return models.NewDocument(models.DefaultTimezone, requestcontext.Now(ctx)), nil
	case TemplateChild:
		return models.NewChild(models.DefaultChildName, models.DefaultChildAge), nil
	case TemplateGuardian:
		return models.NewGuardian("", models.RoleGuardian), nil
	case TemplateDevice:
		return models.NewDevice(), nil
	case TemplatePolicy:
		return policy.Default(), nil
	case TemplateTarget:
		return targetmodels.NewTarget(), nil
	default:
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("unknown template %q", kind))
	}
}
