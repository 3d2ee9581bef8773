package service

import (
	"acumenus/startpage-api/internal/apperr"
	"acumenus/startpage-api/internal/model"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgLinkNotFound = "Application link not found"
	msgLinkRequired = "Name and URL are required"
)

type AssetKind string

const (
	AssetLogo       AssetKind = "logo"
	AssetBanner     AssetKind = "banner"
	AssetScreenshot AssetKind = "screenshot"
)

var imageTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"image/avif",
	"image/x-icon",
	"image/vnd.microsoft.icon",
}

// AssetStore persists uploaded link images and returns their public URL.
// Remove takes a URL returned by Put and ignores URLs it did not issue.
type AssetStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// LinkInput is the body of link create and update requests. Nil scalars and
// nil slices mean the field was absent. An empty slice is present and clears
// the collection on update.
type LinkInput struct {
	Name                *string        `json:"name"`
	URL                 *string        `json:"url"`
	Icon                *string        `json:"icon"`
	Description         *string        `json:"description"`
	DetailedDescription *string        `json:"detailedDescription"`
	GithubURL           *string        `json:"githubUrl"`
	ProductHomepage     *string        `json:"productHomepage"`
	Documentation       *string        `json:"documentation"`
	LogoURL             *string        `json:"logoUrl"`
	BannerImage         *string        `json:"bannerImage"`
	Version             *string        `json:"version"`
	LastUpdated         *string        `json:"lastUpdated"`
	Features            []string       `json:"features"`
	Screenshots         []string       `json:"screenshots"`
	UsageMetrics        *model.Metrics `json:"usageMetrics"`
	RelatedApps         []model.FlexID `json:"relatedApps"`
}

// LinkService manages application links and their dependent collections.
// Writes to the base row and to each collection are separate statements with
// no transaction around them, so a failure part way leaves earlier writes in
// place.
type LinkService struct {
	db     *gorm.DB
	assets AssetStore
}

// NewLinkService creates a link service. assets may be nil, in which case
// asset uploads are refused.
func NewLinkService(db *gorm.DB, assets AssetStore) *LinkService {
	return &LinkService{db: db, assets: assets}
}

func (s *LinkService) List(ctx context.Context) ([]model.Link, error) {
	var links []model.ApplicationLink

	err := s.expanded(ctx).Order("id").Find(&links).Error
	if err != nil {
		return nil, apperr.Server(err)
	}

	out := make([]model.Link, 0, len(links))
	for i := range links {
		out = append(out, links[i].View())
	}

	return out, nil
}

func (s *LinkService) Get(ctx context.Context, rawID string) (model.Link, error) {
	id, err := parseID(rawID, msgLinkNotFound)
	if err != nil {
		return model.Link{}, err
	}

	var link model.ApplicationLink

	err = s.expanded(ctx).First(&link, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Link{}, apperr.NotFound(msgLinkNotFound)
		}

		return model.Link{}, apperr.Server(err)
	}

	return link.View(), nil
}

func (s *LinkService) Create(ctx context.Context, in LinkInput) (model.Link, error) {
	if blank(in.Name) || blank(in.URL) {
		return model.Link{}, apperr.Validation(msgLinkRequired)
	}

	var base model.ApplicationLink
	in.apply(&base)

	db := s.db.WithContext(ctx)

	err := db.Omit(clause.Associations).Create(&base).Error
	if err != nil {
		return model.Link{}, apperr.Server(err)
	}

	if err := s.insertFeatures(db, base.ID, in.Features); err != nil {
		return model.Link{}, err
	}

	if err := s.insertScreenshots(db, base.ID, in.Screenshots); err != nil {
		return model.Link{}, err
	}

	if in.UsageMetrics != nil {
		m := metricsRow(base.ID, in.UsageMetrics)

		if err := db.Create(&m).Error; err != nil {
			return model.Link{}, apperr.Server(err)
		}
	}

	if err := s.insertRelated(db, base.ID, in.RelatedApps); err != nil {
		return model.Link{}, err
	}

	return in.echo(&base), nil
}

// Update merges the supplied scalars into the base row and replaces every
// supplied collection. The response carries the caller's collections, not a
// fresh read.
func (s *LinkService) Update(ctx context.Context, rawID string, in LinkInput) (model.Link, error) {
	base, err := s.find(ctx, rawID)
	if err != nil {
		return model.Link{}, err
	}

	if (in.Name != nil && blank(in.Name)) || (in.URL != nil && blank(in.URL)) {
		return model.Link{}, apperr.Validation(msgLinkRequired)
	}

	in.apply(base)

	db := s.db.WithContext(ctx)

	// Unlike Save this never recreates a row deleted since find
	res := db.Select("*").Omit(clause.Associations).Updates(base)
	if res.Error != nil {
		return model.Link{}, apperr.Server(res.Error)
	}

	if res.RowsAffected == 0 {
		return model.Link{}, apperr.NotFound(msgLinkNotFound)
	}

	if in.Features != nil {
		err = db.Where("application_id = ?", base.ID).Delete(&model.Feature{}).Error
		if err != nil {
			return model.Link{}, apperr.Server(err)
		}

		if err := s.insertFeatures(db, base.ID, in.Features); err != nil {
			return model.Link{}, err
		}
	}

	if in.Screenshots != nil {
		err = db.Where("application_id = ?", base.ID).Delete(&model.Screenshot{}).Error
		if err != nil {
			return model.Link{}, apperr.Server(err)
		}

		if err := s.insertScreenshots(db, base.ID, in.Screenshots); err != nil {
			return model.Link{}, err
		}
	}

	if in.UsageMetrics != nil {
		if err := s.upsertMetrics(db, base.ID, in.UsageMetrics); err != nil {
			return model.Link{}, err
		}
	}

	if in.RelatedApps != nil {
		err = db.Where("application_id = ?", base.ID).Delete(&model.RelatedApp{}).Error
		if err != nil {
			return model.Link{}, apperr.Server(err)
		}

		if err := s.insertRelated(db, base.ID, in.RelatedApps); err != nil {
			return model.Link{}, err
		}
	}

	return in.echo(base), nil
}

func (s *LinkService) Delete(ctx context.Context, rawID string) error {
	base, err := s.find(ctx, rawID)
	if err != nil {
		return err
	}

	db := s.db.WithContext(ctx)

	var shots []model.Screenshot
	if s.assets != nil {
		err = db.Where("application_id = ?", base.ID).Find(&shots).Error
		if err != nil {
			return apperr.Server(err)
		}
	}

	err = db.Select(clause.Associations).Delete(base).Error
	if err != nil {
		return apperr.Server(err)
	}

	if s.assets != nil {
		urls := []*string{base.LogoURL, base.BannerImage}
		for _, sh := range shots {
			urls = append(urls, &sh.ScreenshotURL)
		}

		for _, u := range urls {
			s.removeAsset(ctx, u)
		}
	}

	return nil
}

// AttachAsset stores an uploaded image and records its URL on the link.
// Logos and banners replace the previous value, screenshots are appended.
func (s *LinkService) AttachAsset(ctx context.Context, rawID string, kind AssetKind, r io.Reader) (model.Link, error) {
	if s.assets == nil {
		return model.Link{}, apperr.New(apperr.KindServiceUnavailable, "Asset storage is not configured")
	}

	base, err := s.find(ctx, rawID)
	if err != nil {
		return model.Link{}, err
	}

	if kind != AssetLogo && kind != AssetBanner && kind != AssetScreenshot {
		return model.Link{}, apperr.Validation("Asset kind must be logo, banner or screenshot")
	}

	buf, err := io.ReadAll(r)
	if err != nil {
		return model.Link{}, apperr.Wrap(apperr.KindValidation, "Failed to read upload", err)
	}

	mtype := mimetype.Detect(buf)
	if !slices.ContainsFunc(imageTypes, mtype.Is) {
		return model.Link{}, apperr.Validation("Only image uploads are allowed")
	}

	key := fmt.Sprintf("links/%d/%s-%s%s", base.ID, kind, gonanoid.Must(12), mtype.Extension())

	url, err := s.assets.Put(ctx, key, mtype.String(), bytes.NewReader(buf))
	if err != nil {
		return model.Link{}, apperr.Server(err)
	}

	db := s.db.WithContext(ctx)

	var replaced *string
	switch kind {
	case AssetLogo:
		replaced = base.LogoURL
		err = db.Model(base).Update("logo_url", url).Error
	case AssetBanner:
		replaced = base.BannerImage
		err = db.Model(base).Update("banner_image", url).Error
	case AssetScreenshot:
		err = db.Create(&model.Screenshot{ApplicationID: base.ID, ScreenshotURL: url}).Error
	}
	if err != nil {
		return model.Link{}, apperr.Server(err)
	}

	s.removeAsset(ctx, replaced)

	return s.Get(ctx, rawID)
}

// removeAsset drops an object the link no longer points at. The row is
// already updated, so a failure only leaves an orphan behind.
func (s *LinkService) removeAsset(ctx context.Context, url *string) {
	if url == nil || *url == "" {
		return
	}

	if err := s.assets.Remove(ctx, *url); err != nil {
		zap.L().Warn("Failed to remove link asset", zap.String("url", *url), zap.Error(err))
	}
}

func (s *LinkService) expanded(ctx context.Context) *gorm.DB {
	byID := func(db *gorm.DB) *gorm.DB { return db.Order("id") }

	return s.db.WithContext(ctx).
		Preload("Features", byID).
		Preload("Screenshots", byID).
		Preload("Metrics").
		Preload("Related", byID)
}

func (s *LinkService) find(ctx context.Context, rawID string) (*model.ApplicationLink, error) {
	id, err := parseID(rawID, msgLinkNotFound)
	if err != nil {
		return nil, err
	}

	var link model.ApplicationLink

	err = s.db.WithContext(ctx).First(&link, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgLinkNotFound)
		}

		return nil, apperr.Server(err)
	}

	return &link, nil
}

func (s *LinkService) insertFeatures(db *gorm.DB, appID uint, features []string) error {
	if len(features) == 0 {
		return nil
	}

	rows := make([]model.Feature, 0, len(features))
	for _, f := range features {
		rows = append(rows, model.Feature{ApplicationID: appID, Feature: f})
	}

	if err := db.Create(&rows).Error; err != nil {
		return apperr.Server(err)
	}

	return nil
}

func (s *LinkService) insertScreenshots(db *gorm.DB, appID uint, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	rows := make([]model.Screenshot, 0, len(urls))
	for _, u := range urls {
		rows = append(rows, model.Screenshot{ApplicationID: appID, ScreenshotURL: u})
	}

	if err := db.Create(&rows).Error; err != nil {
		return apperr.Server(err)
	}

	return nil
}

func (s *LinkService) insertRelated(db *gorm.DB, appID uint, ids []model.FlexID) error {
	if len(ids) == 0 {
		return nil
	}

	rows := make([]model.RelatedApp, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.RelatedApp{ApplicationID: appID, RelatedApplicationID: uint(id)})
	}

	if err := db.Create(&rows).Error; err != nil {
		return apperr.Server(err)
	}

	return nil
}

func (s *LinkService) upsertMetrics(db *gorm.DB, appID uint, m *model.Metrics) error {
	var existing model.UsageMetric

	err := db.Where("application_id = ?", appID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := metricsRow(appID, m)
		err = db.Create(&row).Error
	case err == nil:
		err = db.Model(&existing).
			Select("users", "deployments", "stars").
			Updates(metricsRow(appID, m)).
			Error
	}
	if err != nil {
		return apperr.Server(err)
	}

	return nil
}

func metricsRow(appID uint, m *model.Metrics) model.UsageMetric {
	return model.UsageMetric{
		ApplicationID: appID,
		Users:         m.Users,
		Deployments:   m.Deployments,
		Stars:         m.Stars,
	}
}

// apply copies every supplied scalar onto a
func (in *LinkInput) apply(a *model.ApplicationLink) {
	if in.Name != nil {
		a.Name = strings.TrimSpace(*in.Name)
	}
	if in.URL != nil {
		a.URL = strings.TrimSpace(*in.URL)
	}
	if in.Icon != nil {
		a.Icon = *in.Icon
	}
	if in.Description != nil {
		a.Description = *in.Description
	}

	set := func(dst **string, src *string) {
		if src != nil {
			v := *src
			*dst = &v
		}
	}

	set(&a.DetailedDescription, in.DetailedDescription)
	set(&a.GithubURL, in.GithubURL)
	set(&a.ProductHomepage, in.ProductHomepage)
	set(&a.Documentation, in.Documentation)
	set(&a.LogoURL, in.LogoURL)
	set(&a.BannerImage, in.BannerImage)
	set(&a.Version, in.Version)
	set(&a.LastUpdated, in.LastUpdated)
}

// echo renders the stored base row with the caller supplied collections
func (in *LinkInput) echo(a *model.ApplicationLink) model.Link {
	l := a.Base()

	if in.Features != nil {
		l.Features = in.Features
	}

	if in.Screenshots != nil {
		l.Screenshots = in.Screenshots
	}

	if in.UsageMetrics != nil {
		l.UsageMetrics = *in.UsageMetrics
	}

	for _, id := range in.RelatedApps {
		l.RelatedApps = append(l.RelatedApps, id.String())
	}

	return l
}

func blank(p *string) bool {
	return p == nil || strings.TrimSpace(*p) == ""
}
