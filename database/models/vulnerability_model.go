package models

import (
	"time"

	"gorm.io/datatypes"
)

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

type Vulnerability struct {
	ID               int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	CVEID            string     `json:"cveId" gorm:"column:cve_id;type:text;uniqueIndex;not null"`
	SourceIdentifier string     `json:"sourceIdentifier" gorm:"type:text;"`
	VulnStatus       string     `json:"vulnStatus" gorm:"type:text;"`
	Published        *time.Time `json:"published"`
	LastModified     *time.Time `json:"lastModified"`
	Description      *string    `json:"description" gorm:"type:text;"`

	CVSSV2Score    *float64 `json:"cvssV2Score" gorm:"column:cvss_v2_score;type:numeric(3,1);"`
	CVSSV2Vector   *string  `json:"cvssV2Vector" gorm:"column:cvss_v2_vector;type:text;"`
	CVSSV2Severity *string  `json:"cvssV2Severity" gorm:"column:cvss_v2_severity;type:text;"`
	CVSSV3Score    *float64 `json:"cvssV3Score" gorm:"column:cvss_v3_score;type:numeric(3,1);"`
	CVSSV3Vector   *string  `json:"cvssV3Vector" gorm:"column:cvss_v3_vector;type:text;"`
	CVSSV3Severity *string  `json:"cvssV3Severity" gorm:"column:cvss_v3_severity;type:text;"`

	Configurations datatypes.JSON `json:"configurations" gorm:"type:jsonb;"`
	References     datatypes.JSON `json:"references" gorm:"column:cve_references;type:jsonb;"`
	Weaknesses     datatypes.JSON `json:"weaknesses" gorm:"type:jsonb;"`
	RawData        datatypes.JSON `json:"rawData,omitempty" gorm:"type:jsonb;"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Vulnerability) TableName() string {
	return "vulnerabilities"
}

// IsNewerThan reports whether v carries a strictly later last modified date than other.
// A record without a last modified date is never newer.
func (v Vulnerability) IsNewerThan(other Vulnerability) bool {
	if v.LastModified == nil {
		return false
	}
	if other.LastModified == nil {
		return true
	}
	return v.LastModified.After(*other.LastModified)
}

type UpsertOutcome int

const (
	UpsertUnchanged UpsertOutcome = iota
	UpsertCreated
	UpsertUpdated
)

func (o UpsertOutcome) WasCreated() bool {
	return o == UpsertCreated
}

func (o UpsertOutcome) String() string {
	switch o {
	case UpsertCreated:
		return "created"
	case UpsertUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}
