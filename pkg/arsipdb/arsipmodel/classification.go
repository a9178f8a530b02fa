package arsipmodel

import "time"

// Classification is a current classification code with its retention rules.
type Classification struct {
	ID               int    `json:"id"`
	Code             string `json:"kode" gorm:"size:64;uniqueIndex"`
	Label            string `json:"jenis_arsip"`
	ActiveYears      int    `json:"retensi_aktif"`
	InactiveYears    int    `json:"retensi_inaktif"`
	FinalDisposition string `json:"nasib_akhir"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Classification) TableName() string {
	return "klasifikasi_arsip"
}

// LegacyClassification aliases an old code to the current code that replaced it.
type LegacyClassification struct {
	ID          int    `json:"id"`
	Code        string `json:"kode_lama" gorm:"size:64;uniqueIndex"`
	CurrentCode string `json:"kode" gorm:"size:64"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (LegacyClassification) TableName() string {
	return "klasifikasi_arsip_lama"
}
