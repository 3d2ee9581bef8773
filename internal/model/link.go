package model

import (
	"strconv"
	"time"
)

type ApplicationLink struct {
	ID                  uint   `gorm:"primaryKey;autoIncrement"`
	Name                string `gorm:"size:255;not null"`
	URL                 string `gorm:"column:url;size:1024;not null"`
	Icon                string `gorm:"size:255"`
	Description         string
	DetailedDescription *string
	GithubURL           *string `gorm:"column:github_url;size:1024"`
	ProductHomepage     *string `gorm:"size:1024"`
	Documentation       *string `gorm:"size:1024"`
	LogoURL             *string `gorm:"column:logo_url;size:1024"`
	BannerImage         *string `gorm:"size:1024"`
	Version             *string `gorm:"size:64"`
	LastUpdated         *string `gorm:"size:64"` // free form label, not a timestamp
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Features    []Feature    `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
	Screenshots []Screenshot `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
	Metrics     *UsageMetric `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
	Related     []RelatedApp `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
}

func (ApplicationLink) TableName() string {
	return "application_links"
}

type Feature struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	ApplicationID uint   `gorm:"index;not null"`
	Feature       string `gorm:"not null"`
}

func (Feature) TableName() string {
	return "application_features"
}

type Screenshot struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	ApplicationID uint   `gorm:"index;not null"`
	ScreenshotURL string `gorm:"column:screenshot_url;size:1024;not null"`
}

func (Screenshot) TableName() string {
	return "application_screenshots"
}

// UsageMetric holds at most one row per application
type UsageMetric struct {
	ID            uint `gorm:"primaryKey;autoIncrement"`
	ApplicationID uint `gorm:"uniqueIndex;not null"`
	Users         *int64
	Deployments   *int64
	Stars         *int64
}

func (UsageMetric) TableName() string {
	return "application_metrics"
}

// RelatedApp points at another application. The target is not checked for
// existence, and the reference is one directional.
type RelatedApp struct {
	ID                   uint `gorm:"primaryKey;autoIncrement"`
	ApplicationID        uint `gorm:"index;not null"`
	RelatedApplicationID uint `gorm:"column:related_application_id;not null"`
}

func (RelatedApp) TableName() string {
	return "application_related"
}

// Metrics is the usageMetrics object. Absent values are omitted so a link
// without a metrics row is rendered as {}.
type Metrics struct {
	Users       *int64 `json:"users,omitempty"`
	Deployments *int64 `json:"deployments,omitempty"`
	Stars       *int64 `json:"stars,omitempty"`
}

// Link is an application link expanded with its dependent collections
type Link struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	URL                 string   `json:"url"`
	Icon                string   `json:"icon"`
	Description         string   `json:"description"`
	DetailedDescription *string  `json:"detailedDescription"`
	GithubURL           *string  `json:"githubUrl"`
	ProductHomepage     *string  `json:"productHomepage"`
	Documentation       *string  `json:"documentation"`
	LogoURL             *string  `json:"logoUrl"`
	BannerImage         *string  `json:"bannerImage"`
	Features            []string `json:"features"`
	Screenshots         []string `json:"screenshots"`
	UsageMetrics        Metrics  `json:"usageMetrics"`
	RelatedApps         []string `json:"relatedApps"`
	Version             *string  `json:"version"`
	LastUpdated         *string  `json:"lastUpdated"`
}

// Base copies the scalar columns of a into a Link with empty collections
func (a *ApplicationLink) Base() Link {
	return Link{
		ID:                  strconv.FormatUint(uint64(a.ID), 10),
		Name:                a.Name,
		URL:                 a.URL,
		Icon:                a.Icon,
		Description:         a.Description,
		DetailedDescription: a.DetailedDescription,
		GithubURL:           a.GithubURL,
		ProductHomepage:     a.ProductHomepage,
		Documentation:       a.Documentation,
		LogoURL:             a.LogoURL,
		BannerImage:         a.BannerImage,
		Features:            []string{},
		Screenshots:         []string{},
		RelatedApps:         []string{},
		Version:             a.Version,
		LastUpdated:         a.LastUpdated,
	}
}

// View expands a with its preloaded collections. Duplicate features are
// dropped, keeping the first occurrence.
func (a *ApplicationLink) View() Link {
	l := a.Base()

	seen := make(map[string]struct{}, len(a.Features))
	for _, f := range a.Features {
		if _, ok := seen[f.Feature]; ok {
			continue
		}

		seen[f.Feature] = struct{}{}
		l.Features = append(l.Features, f.Feature)
	}

	for _, s := range a.Screenshots {
		l.Screenshots = append(l.Screenshots, s.ScreenshotURL)
	}

	if a.Metrics != nil {
		l.UsageMetrics = Metrics{
			Users:       a.Metrics.Users,
			Deployments: a.Metrics.Deployments,
			Stars:       a.Metrics.Stars,
		}
	}

	for _, r := range a.Related {
		l.RelatedApps = append(l.RelatedApps, strconv.FormatUint(uint64(r.RelatedApplicationID), 10))
	}

	return l
}
