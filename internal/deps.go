package internal

import (
	"acumenus/startpage-api/config"
	"acumenus/startpage-api/internal/service"
	"acumenus/startpage-api/internal/storage"
	"acumenus/startpage-api/pkg/security"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Deps is everything a handler may need. It is built once at startup and
// passed to handlers explicitly.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Argon  *security.ArgonHash
	Tokens *service.TokenService
	Users  *service.UserService
	Links  *service.LinkService
	Assets *storage.S3Store // nil when asset storage is disabled
}

func NewDeps(ctx context.Context, c *config.Config, db *gorm.DB) (*Deps, error) {
	d := &Deps{
		Config: c,
		DB:     db,
		Argon:  security.New(),
	}

	tokens, err := service.NewTokenService(c.JWT.Secret)
	if err != nil {
		return nil, err
	}
	d.Tokens = tokens

	d.Users = service.NewUserService(db, d.Argon, tokens, service.Bootstrap{
		Username: c.Auth.BootstrapUsername,
		Password: c.Auth.BootstrapPassword,
	})

	var assets service.AssetStore
	if c.Storage.Enabled {
		s3, err := storage.NewS3(ctx, storage.Config{
			Bucket:    c.Storage.Bucket,
			Region:    c.Storage.Region,
			Endpoint:  c.Storage.Endpoint,
			AccessKey: c.Storage.AccessKey,
			SecretKey: c.Storage.SecretKey,
			PublicURL: c.Storage.PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		d.Assets = s3
		assets = s3
	}

	d.Links = service.NewLinkService(db, assets)

	return d, nil
}
