package okr

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/arnold/okrmaster-api/internal/models"
)

// AdoptOption customizes the draft produced by Adopt.
type AdoptOption func(*adoptOptions)

type adoptOptions struct {
	title string
}

// WithTitle replaces the draft objective title, typically with a rephrasing
// produced by the AI coach. Blank titles are ignored.
func WithTitle(title string) AdoptOption {
	return func(o *adoptOptions) {
		o.title = strings.TrimSpace(title)
	}
}

// Adoption is the result of a successful Adopt call.
type Adoption struct {
	Draft             models.Objective
	Source            models.KeyResult
	SourceOwnerID     uuid.UUID
	SourceObjectiveID uuid.UUID
}

// Adopt copies the key result keyResultID, found in objectives, into a new
// objective draft owned by viewerID. The draft has no ID yet and exactly one
// key result with its progress reset and its lineage pointing at the source.
// The source objective is never modified.
func (p *Policy) Adopt(viewerID, keyResultID uuid.UUID, objectives []models.Objective, opts ...AdoptOption) (*Adoption, error) {
	viewer, ok := p.dir.Person(viewerID)
	if !ok {
		return nil, fmt.Errorf("viewer %s: %w", viewerID, ErrNotFound)
	}

	var (
		sourceObj *models.Objective
		source    *models.KeyResult
	)
	for i := range objectives {
		if kr := objectives[i].FindKeyResult(keyResultID); kr != nil {
			sourceObj, source = &objectives[i], kr
			break
		}
	}
	if source == nil {
		return nil, fmt.Errorf("key result %s: %w", keyResultID, ErrNotFound)
	}

	if !p.CanAdopt(viewer.ID, sourceObj.OwnerID) {
		return nil, fmt.Errorf("%s may not adopt from %s: %w", viewer.ID, sourceObj.OwnerID, ErrAdoptionDenied)
	}

	o := adoptOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	title := source.Title
	if o.title != "" {
		title = o.title
	}

	parentID := source.ID
	draft := models.Objective{
		OwnerID:        viewer.ID,
		OrganizationID: *viewer.OrganizationID,
		Title:          title,
		Category:       sourceObj.Category,
		KeyResults: []models.KeyResult{{
			Title:             source.Title,
			CurrentValue:      0,
			TargetValue:       source.TargetValue,
			Unit:              source.Unit,
			ParentKeyResultID: &parentID,
			Adopted:           true,
		}},
	}

	return &Adoption{
		Draft:             draft,
		Source:            *source,
		SourceOwnerID:     sourceObj.OwnerID,
		SourceObjectiveID: sourceObj.ID,
	}, nil
}
