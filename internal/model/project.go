package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultProjectName is created for every new account.
const DefaultProjectName = "Inbox"

// DefaultProjectColor is used for the Inbox and for imported projects without a colour.
const DefaultProjectColor = "#909dab"

// ProjectColors is the palette new projects pick from when no colour is given.
var ProjectColors = []string{"#FF5733", "#33FF57", "#3357FF", "#FF33A1", "#A133FF", "#33FFA1", "#FFC300", "#C70039"}

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_projects_owner_name"`
	Name        string    `gorm:"not null;uniqueIndex:idx_projects_owner_name"`
	Description string
	Color       string `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Owner User   `gorm:"foreignKey:OwnerID"`
	Tasks []Task `gorm:"foreignKey:ProjectID"`
}
