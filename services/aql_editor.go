package services

import (
	"context"
	"fmt"
)

// PlanEditor is the view-model behind the sampling plan edit screen. It keeps
// the last saved matrix and a working copy; edits touch only the working copy
// until Save succeeds, and Cancel drops them without a backend call.
type PlanEditor struct {
	repo    AQLRepository
	saved   SamplingPlanMatrix
	working []SamplingPlanRow
	dirty   bool
}

// NewPlanEditor returns an empty editor over repo. Call Load before editing.
func NewPlanEditor(repo AQLRepository) *PlanEditor {
	return &PlanEditor{repo: repo}
}

// Load fetches the sampling plans and resets the working copy.
func (p *PlanEditor) Load(ctx context.Context) error {
	rows, err := p.repo.FetchSamplingPlans(ctx)
	if err != nil {
		return fmt.Errorf("load sampling plans: %w", err)
	}
	m, err := BuildSamplingPlanMatrix(rows)
	if err != nil {
		return err
	}
	p.saved = m
	p.working = cloneRows(m.Rows)
	p.dirty = false
	return nil
}

// Matrix returns a copy of the working matrix.
func (p *PlanEditor) Matrix() SamplingPlanMatrix {
	return SamplingPlanMatrix{
		AQLLevels: append([]float64(nil), p.saved.AQLLevels...),
		Rows:      cloneRows(p.working),
	}
}

// Saved returns a copy of the last loaded or saved matrix.
func (p *PlanEditor) Saved() SamplingPlanMatrix {
	return SamplingPlanMatrix{
		AQLLevels: append([]float64(nil), p.saved.AQLLevels...),
		Rows:      cloneRows(p.saved.Rows),
	}
}

// Dirty reports whether the working copy has unsaved edits.
func (p *PlanEditor) Dirty() bool {
	return p.dirty
}

// Paste applies a pasted grid to the working copy.
func (p *PlanEditor) Paste(text string) (PasteResult, error) {
	res, err := ApplyPastedGrid(p.working, text, p.saved.AQLLevels)
	if err != nil {
		return PasteResult{}, err
	}
	p.working = res.Rows
	if res.AppliedLines > 0 {
		p.dirty = true
	}
	res.Rows = cloneRows(res.Rows)
	return res, nil
}

// SetCell sets Ac and Re of one sample letter at one AQL level.
func (p *PlanEditor) SetCell(letter string, level float64, ac, re int) error {
	if ac < 0 || re < 0 {
		return &ValidationError{Field: "Ac/Re", Message: "must not be negative"}
	}
	for i := range p.working {
		if p.working[i].SampleLetter != letter {
			continue
		}
		for j := range p.working[i].AQLData {
			if SameAQLLevel(p.working[i].AQLData[j].AQLLevel, level) {
				p.working[i].AQLData[j].Ac = ac
				p.working[i].AQLData[j].Re = re
				p.dirty = true
				return nil
			}
		}
		return &NotFoundError{What: "AQL level", Key: fmt.Sprintf("%s for sample letter %s", FormatAQLLevel(level), letter)}
	}
	return &NotFoundError{What: "sample letter", Key: letter}
}

// Cancel discards the working copy.
func (p *PlanEditor) Cancel() {
	p.working = cloneRows(p.saved.Rows)
	p.dirty = false
}

// Save sends the working copy as one bulk update. The saved snapshot is
// replaced only after the repository accepts it; on failure both copies stay
// as they were.
func (p *PlanEditor) Save(ctx context.Context) error {
	if !p.dirty {
		return nil
	}
	updated, err := p.repo.BulkUpdateSamplingPlans(ctx, cloneRows(p.working))
	if err != nil {
		return fmt.Errorf("save sampling plans: %w", err)
	}
	m, err := BuildSamplingPlanMatrix(updated)
	if err != nil {
		return err
	}
	p.saved = m
	p.working = cloneRows(m.Rows)
	p.dirty = false
	return nil
}
