package arsipmodel

import (
	"time"

	"gorm.io/gorm"
)

// ApprovalState is shared by archive rows and by the approval slots of a
// transfer process.
type ApprovalState string

const (
	StatePending  ApprovalState = "Pending"
	StateApproved ApprovalState = "Approved"
	StateRejected ApprovalState = "Rejected"
)

type ActiveArchive struct {
	ID                 int           `json:"id"`
	NomorBerkas        string        `json:"nomor_berkas"`
	ClassificationCode string        `json:"kode_klasifikasi" gorm:"size:64;index"`
	Description        string        `json:"uraian_informasi"`
	CreationPeriod     string        `json:"kurun_waktu"`
	Quantity           string        `json:"jumlah"`
	DevelopmentLevel   string        `json:"tingkat_perkembangan"`
	ActiveStart        string        `json:"jangka_simpan_aktif_mulai"`
	ActiveEnd          string        `json:"jangka_simpan_aktif_selesai"`
	ArchiveType        string        `json:"jenis_arsip"`
	InactiveYears      *int          `json:"masa_retensi_inaktif"`
	FinalDisposition   string        `json:"nasib_akhir"`
	Status             ApprovalState `json:"status_persetujuan" gorm:"size:16;index"`
	LocationID         int           `json:"lokasi_id"`
	Location           *Location     `json:"lokasi,omitempty" gorm:"foreignKey:LocationID;references:ID"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func (ActiveArchive) TableName() string {
	return "arsip_aktif"
}

type InactiveArchive struct {
	ID                 int           `json:"id"`
	NomorBerkas        int           `json:"nomor_berkas"`
	ClassificationCode string        `json:"kode_klasifikasi"`
	ArchiveType        string        `json:"jenis_arsip"`
	Description        string        `json:"uraian_informasi"`
	CreationPeriod     string        `json:"kurun_waktu"`
	Quantity           string        `json:"jumlah"`
	DevelopmentLevel   string        `json:"tingkat_perkembangan"`
	InactiveStart      string        `json:"jangka_simpan_inaktif_mulai"`
	InactiveEnd        string        `json:"jangka_simpan_inaktif_selesai"`
	InactiveYears      int           `json:"masa_retensi_inaktif"`
	FinalDisposition   string        `json:"nasib_akhir"`
	BoxNumber          string        `json:"nomor_boks"`
	Location           string        `json:"lokasi_simpan"`
	Category           string        `json:"kategori_arsip"`
	SourceActiveID     int           `json:"arsip_aktif_id" gorm:"index"`
	MemoID             int           `json:"berita_acara_id" gorm:"index"`
	ProcessID          int           `json:"pemindahan_process_id" gorm:"index"`
	UnitID             int           `json:"bidang_id"`
	Status             ApprovalState `json:"status_persetujuan" gorm:"size:16"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func (InactiveArchive) TableName() string {
	return "arsip_inaktif"
}

func (a *InactiveArchive) BeforeCreate(tx *gorm.DB) (err error) {
	if a.Status == "" {
		a.Status = StatePending
	}
	return
}
