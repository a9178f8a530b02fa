package pemindahan

import (
	"strings"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/klasifikasi"
)

// Source names the layer an effective value came from.
type Source string

const (
	SourceNone           Source = ""
	SourceOverride       Source = "override"
	SourceClassification Source = "klasifikasi"
	SourceStored         Source = "arsip"
	SourceProcess        Source = "pemindahan"
)

type Resolved[T any] struct {
	Value  T      `json:"value"`
	Source Source `json:"source"`
}

// Layers holds every value source for one selected record, highest priority
// first. Classification is nil when the code could not be resolved.
type Layers struct {
	Override       arsipmodel.PerRecordEdit
	Classification *klasifikasi.Info
	Stored         *arsipmodel.ActiveArchive
	Destination    arsipmodel.PemindahanInfo
}

// Effective is the merged view of the per-record fields of a migration.
type Effective struct {
	RecordID         int              `json:"record_id"`
	ArchiveType      Resolved[string] `json:"jenis_arsip"`
	InactiveYears    Resolved[*int]   `json:"masa_retensi_inaktif"`
	FinalDisposition Resolved[string] `json:"nasib_akhir"`
	BoxNumber        Resolved[string] `json:"nomor_boks"`
	DevelopmentLevel Resolved[string] `json:"tingkat_perkembangan"`
}

// Merge applies override, then classification, then stored values. The box
// number falls back only to the process level box.
func Merge(l Layers) Effective {
	var (
		stored = l.Stored
		class  = l.Classification
		e      Effective
	)

	if stored == nil {
		stored = &arsipmodel.ActiveArchive{}
	}
	e.RecordID = stored.ID

	e.ArchiveType = firstString(
		candidate(l.Override.ArchiveType, SourceOverride),
		classString(class, func(c *klasifikasi.Info) string { return c.Label }),
		Resolved[string]{Value: stored.ArchiveType, Source: SourceStored},
	)

	e.FinalDisposition = firstString(
		candidate(l.Override.FinalDisposition, SourceOverride),
		classString(class, func(c *klasifikasi.Info) string { return c.FinalDisposition }),
		Resolved[string]{Value: stored.FinalDisposition, Source: SourceStored},
	)

	e.BoxNumber = firstString(
		candidate(l.Override.BoxNumber, SourceOverride),
		Resolved[string]{Value: l.Destination.BoxNumber, Source: SourceProcess},
	)

	e.DevelopmentLevel = firstString(
		candidate(l.Override.DevelopmentLevel, SourceOverride),
		Resolved[string]{Value: stored.DevelopmentLevel, Source: SourceStored},
	)

	switch {
	case l.Override.InactiveYears != nil:
		e.InactiveYears = Resolved[*int]{Value: intPtr(*l.Override.InactiveYears), Source: SourceOverride}
	case class != nil:
		e.InactiveYears = Resolved[*int]{Value: intPtr(class.InactiveYears), Source: SourceClassification}
	case stored.InactiveYears != nil:
		e.InactiveYears = Resolved[*int]{Value: intPtr(*stored.InactiveYears), Source: SourceStored}
	}

	return e
}

// Validate reports every missing or invalid required field, joined.
func (e Effective) Validate() error {
	var errs []error

	if e.ArchiveType.Source == SourceNone {
		errs = append(errs, required("jenis_arsip", e.RecordID))
	}

	switch {
	case e.InactiveYears.Value == nil:
		errs = append(errs, required("masa_retensi_inaktif", e.RecordID))
	case *e.InactiveYears.Value < 0:
		errs = append(errs, &ValidationError{Field: "masa_retensi_inaktif", RecordID: e.RecordID, Message: "must not be negative"})
	}

	if e.FinalDisposition.Source == SourceNone {
		errs = append(errs, required("nasib_akhir", e.RecordID))
	}

	if e.BoxNumber.Source == SourceNone {
		errs = append(errs, required("nomor_boks", e.RecordID))
	}

	return joinValidation(errs)
}

// firstString returns the first candidate with a non blank value. Blank
// values count as absent.
func firstString(candidates ...Resolved[string]) Resolved[string] {
	for _, c := range candidates {
		if v := strings.TrimSpace(c.Value); v != "" {
			return Resolved[string]{Value: v, Source: c.Source}
		}
	}
	return Resolved[string]{}
}

func candidate(v *string, source Source) Resolved[string] {
	if v == nil {
		return Resolved[string]{}
	}
	return Resolved[string]{Value: *v, Source: source}
}

func classString(c *klasifikasi.Info, field func(*klasifikasi.Info) string) Resolved[string] {
	if c == nil {
		return Resolved[string]{}
	}
	return Resolved[string]{Value: field(c), Source: SourceClassification}
}

func intPtr(v int) *int {
	return &v
}
