package pemindahan

import (
	"testing"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/klasifikasi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestMergeFallbackPriority(t *testing.T) {
	stored := &arsipmodel.ActiveArchive{
		ID:               7,
		ArchiveType:      "Surat Dinas",
		InactiveYears:    intPtr(9),
		FinalDisposition: "Dinilai Kembali",
		DevelopmentLevel: "Asli",
	}
	class := &klasifikasi.Info{Code: "045", Label: "Surat", InactiveYears: 2, FinalDisposition: "Musnah"}
	override := arsipmodel.PerRecordEdit{
		ArchiveType:      strPtr("Nota Dinas"),
		InactiveYears:    intPtr(4),
		FinalDisposition: strPtr("Permanen"),
		BoxNumber:        strPtr("B-7"),
		DevelopmentLevel: strPtr("Salinan"),
	}
	destination := arsipmodel.PemindahanInfo{BoxNumber: "B-12"}

	tests := []struct {
		name        string
		layers      Layers
		archiveType Resolved[string]
		years       int
		yearsSource Source
		disposition Resolved[string]
		box         Resolved[string]
		level       Resolved[string]
	}{
		{
			name:        "override wins over classification and stored",
			layers:      Layers{Override: override, Classification: class, Stored: stored, Destination: destination},
			archiveType: Resolved[string]{"Nota Dinas", SourceOverride},
			years:       4,
			yearsSource: SourceOverride,
			disposition: Resolved[string]{"Permanen", SourceOverride},
			box:         Resolved[string]{"B-7", SourceOverride},
			level:       Resolved[string]{"Salinan", SourceOverride},
		},
		{
			name:        "classification wins over stored",
			layers:      Layers{Classification: class, Stored: stored, Destination: destination},
			archiveType: Resolved[string]{"Surat", SourceClassification},
			years:       2,
			yearsSource: SourceClassification,
			disposition: Resolved[string]{"Musnah", SourceClassification},
			box:         Resolved[string]{"B-12", SourceProcess},
			level:       Resolved[string]{"Asli", SourceStored},
		},
		{
			name:        "stored is the last resort",
			layers:      Layers{Stored: stored, Destination: destination},
			archiveType: Resolved[string]{"Surat Dinas", SourceStored},
			years:       9,
			yearsSource: SourceStored,
			disposition: Resolved[string]{"Dinilai Kembali", SourceStored},
			box:         Resolved[string]{"B-12", SourceProcess},
			level:       Resolved[string]{"Asli", SourceStored},
		},
		{
			name: "blank override falls through",
			layers: Layers{
				Override:       arsipmodel.PerRecordEdit{ArchiveType: strPtr("  "), BoxNumber: strPtr("")},
				Classification: class,
				Stored:         stored,
				Destination:    destination,
			},
			archiveType: Resolved[string]{"Surat", SourceClassification},
			years:       2,
			yearsSource: SourceClassification,
			disposition: Resolved[string]{"Musnah", SourceClassification},
			box:         Resolved[string]{"B-12", SourceProcess},
			level:       Resolved[string]{"Asli", SourceStored},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e := Merge(test.layers)
			assert.Equal(t, 7, e.RecordID)
			assert.Equal(t, test.archiveType, e.ArchiveType)
			require.NotNil(t, e.InactiveYears.Value)
			assert.Equal(t, test.years, *e.InactiveYears.Value)
			assert.Equal(t, test.yearsSource, e.InactiveYears.Source)
			assert.Equal(t, test.disposition, e.FinalDisposition)
			assert.Equal(t, test.box, e.BoxNumber)
			assert.Equal(t, test.level, e.DevelopmentLevel)
			assert.NoError(t, e.Validate())
		})
	}
}

func TestMergeOverrideZeroYears(t *testing.T) {
	e := Merge(Layers{
		Override:       arsipmodel.PerRecordEdit{InactiveYears: intPtr(0)},
		Classification: &klasifikasi.Info{InactiveYears: 5},
		Stored:         &arsipmodel.ActiveArchive{ID: 1},
	})

	require.NotNil(t, e.InactiveYears.Value)
	assert.Equal(t, 0, *e.InactiveYears.Value)
	assert.Equal(t, SourceOverride, e.InactiveYears.Source)
}

func TestValidateReportsEveryMissingField(t *testing.T) {
	e := Merge(Layers{Stored: &arsipmodel.ActiveArchive{ID: 3}})

	err := e.Validate()
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var fields []string
	for _, v := range ValidationErrors(err) {
		assert.Equal(t, 3, v.RecordID)
		fields = append(fields, v.Field)
	}
	assert.Equal(t, []string{"jenis_arsip", "masa_retensi_inaktif", "nasib_akhir", "nomor_boks"}, fields)

	e = Merge(Layers{
		Override:       arsipmodel.PerRecordEdit{InactiveYears: intPtr(-1), BoxNumber: strPtr("B-1")},
		Classification: &klasifikasi.Info{Label: "Surat", FinalDisposition: "Musnah"},
		Stored:         &arsipmodel.ActiveArchive{ID: 3},
	})
	problems := ValidationErrors(e.Validate())
	require.Len(t, problems, 1)
	assert.Equal(t, "masa_retensi_inaktif", problems[0].Field)
	assert.Equal(t, "must not be negative", problems[0].Message)
}
