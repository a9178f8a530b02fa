package pemindahan

import (
	"context"
	"slices"
	"time"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/arsipdb/stor"
	"github.com/arsipku/arsipd/pkg/retensi"
	"golang.org/x/sync/errgroup"
)

type FilterMode string

const (
	FilterAll      FilterMode = "all"
	FilterExpired  FilterMode = "expired"
	FilterSelected FilterMode = "selected"
)

const (
	DefaultPerPage = 25
	MaxPerPage     = 200
)

type CandidateFilter struct {
	Search  string
	Mode    FilterMode
	Page    int
	PerPage int
}

func (f CandidateFilter) normalized() CandidateFilter {
	if f.Mode == "" {
		f.Mode = FilterAll
	}

	if f.Page < 1 {
		f.Page = 1
	}

	switch {
	case f.PerPage < 1:
		f.PerPage = DefaultPerPage
	case f.PerPage > MaxPerPage:
		f.PerPage = MaxPerPage
	}

	return f
}

type Candidate struct {
	arsipmodel.ActiveArchive
	Expired  bool `json:"retensi_habis"`
	Selected bool `json:"dipilih"`
}

type CandidatePage struct {
	Candidates []Candidate `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
}

// IDs returns the ids of the visible candidates in listing order.
func (p *CandidatePage) IDs() []int {
	ids := make([]int, 0, len(p.Candidates))
	for _, c := range p.Candidates {
		ids = append(ids, c.ID)
	}
	return ids
}

// Selector lists the active archives of a unit that may still be transferred:
// approved and not yet linked to a transfer.
type Selector struct {
	archives stor.ActiveArchiveStor
	links    stor.TransferLinkStor
	now      func() time.Time
}

func NewSelector(archives stor.ActiveArchiveStor, links stor.TransferLinkStor) *Selector {
	return &Selector{archives: archives, links: links, now: time.Now}
}

// Eligible runs the listing and the linked exclusion queries concurrently.
func (s *Selector) Eligible(ctx context.Context, unitID int, search string) ([]arsipmodel.ActiveArchive, error) {
	var (
		listed []arsipmodel.ActiveArchive
		linked []int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}

		var err error
		listed, err = s.archives.ListApprovedActiveArchivesForUnit(unitID, search)
		return err
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}

		var err error
		linked, err = s.links.GetLinkedActiveArchiveIDsForUnit(unitID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	excluded := make(map[int]struct{}, len(linked))
	for _, id := range linked {
		excluded[id] = struct{}{}
	}

	eligible := listed[:0]
	for _, a := range listed {
		if _, ok := excluded[a.ID]; !ok {
			eligible = append(eligible, a)
		}
	}

	return eligible, nil
}

// List returns one page of candidates. selected is the selection of the
// process and drives both the Selected flag and the FilterSelected mode.
func (s *Selector) List(ctx context.Context, unitID int, selected []int, filter CandidateFilter) (*CandidatePage, error) {
	filter = filter.normalized()

	eligible, err := s.Eligible(ctx, unitID, filter.Search)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var matching []Candidate
	for _, a := range eligible {
		c := Candidate{
			ActiveArchive: a,
			Expired:       retensi.IsExpired(a.ActiveEnd, now),
			Selected:      slices.Contains(selected, a.ID),
		}

		switch {
		case filter.Mode == FilterExpired && !c.Expired:
			continue
		case filter.Mode == FilterSelected && !c.Selected:
			continue
		}

		matching = append(matching, c)
	}

	page := &CandidatePage{
		Candidates: []Candidate{},
		Total:      len(matching),
		Page:       filter.Page,
		PerPage:    filter.PerPage,
	}

	start := (filter.Page - 1) * filter.PerPage
	if start < len(matching) {
		end := min(start+filter.PerPage, len(matching))
		page.Candidates = matching[start:end]
	}

	return page, nil
}

// CheckEligible returns a ValidationError when id is not a candidate of unitID.
func (s *Selector) CheckEligible(ctx context.Context, unitID, id int) error {
	var (
		archive *arsipmodel.ActiveArchive
		links   []arsipmodel.TransferLink
	)

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		archive, err = s.archives.GetActiveArchiveByID(id)
		return err
	})

	g.Go(func() error {
		var err error
		links, err = s.links.GetLinksForActiveArchives([]int{id})
		return err
	})

	err := g.Wait()
	switch {
	case stor.IsRecordNotFound(err):
		return &ValidationError{Field: "selected_ids", RecordID: id, Message: "does not exist"}
	case err != nil:
		return err
	case archive.Status != arsipmodel.StateApproved:
		return &ValidationError{Field: "selected_ids", RecordID: id, Message: "is not approved"}
	case archive.Location == nil || archive.Location.UnitID != unitID:
		return &ValidationError{Field: "selected_ids", RecordID: id, Message: "belongs to another unit"}
	case len(links) != 0:
		return &ValidationError{Field: "selected_ids", RecordID: id, Message: "has already been transferred"}
	}

	return nil
}

// Revalidate splits selected into the ids that still resolve to an existing,
// untransferred archive and the ones that do not. Order is preserved.
func (s *Selector) Revalidate(ctx context.Context, selected []int) (kept, dropped []int, err error) {
	if len(selected) == 0 {
		return []int{}, nil, nil
	}

	var (
		existing []arsipmodel.ActiveArchive
		links    []arsipmodel.TransferLink
	)

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		existing, err = s.archives.GetActiveArchivesByIDs(selected)
		return err
	})

	g.Go(func() error {
		var err error
		links, err = s.links.GetLinksForActiveArchives(selected)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	resolvable := make(map[int]bool, len(existing))
	for _, a := range existing {
		resolvable[a.ID] = true
	}

	for _, l := range links {
		resolvable[l.ActiveArchiveID] = false
	}

	kept = make([]int, 0, len(selected))
	for _, id := range selected {
		if resolvable[id] {
			kept = append(kept, id)
		} else {
			dropped = append(dropped, id)
		}
	}

	return kept, dropped, nil
}

// Toggle adds id to the end of selected, or removes it when present.
func Toggle(selected []int, id int) []int {
	if i := slices.Index(selected, id); i >= 0 {
		return slices.Delete(slices.Clone(selected), i, i+1)
	}
	return append(slices.Clone(selected), id)
}

// SelectAll appends the visible ids that are not selected yet, in listing order.
func SelectAll(selected, visible []int) []int {
	out := slices.Clone(selected)
	for _, id := range visible {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// DeselectAll removes the visible ids and keeps selections on other pages.
func DeselectAll(selected, visible []int) []int {
	out := make([]int, 0, len(selected))
	for _, id := range selected {
		if !slices.Contains(visible, id) {
			out = append(out, id)
		}
	}
	return out
}
