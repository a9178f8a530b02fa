package arsipmodel

import "time"

type Role string

const (
	// RolePengelola is the records officer that drives a transfer.
	RolePengelola    Role = "pengelola"
	RoleKepalaBidang Role = "kepala_bidang"
	RoleSekretaris   Role = "sekretaris"
)

type User struct {
	ID        int    `json:"id"`
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	UnitID    int    `json:"unit_id"`
	ApiToken  string `json:"-"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

// Unit is an organizational unit (bidang) that owns storage locations.
type Unit struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Unit) TableName() string {
	return "bidang"
}

type Location struct {
	ID        int    `json:"id"`
	UnitID    int    `json:"unit_id"`
	Unit      *Unit  `json:"unit,omitempty" gorm:"foreignKey:UnitID;references:ID"`
	Cabinet   string `json:"no_filing_cabinet"`
	Drawer    string `json:"no_laci"`
	Folder    string `json:"no_folder"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Location) TableName() string {
	return "lokasi_penyimpanan"
}
