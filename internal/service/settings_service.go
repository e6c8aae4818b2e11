package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"estampa-fina/internal/model"
	"estampa-fina/internal/repository"
	"estampa-fina/internal/storage"
	"estampa-fina/internal/ws"
	"estampa-fina/pkg/validator"
)

// Branding assets accepted by UploadAsset.
const (
	AssetLogo    = "logo"
	AssetFavicon = "favicon"
)

type SettingsService interface {
	Get() (*model.Settings, error)
	Update(actor Actor, patch *model.SettingsPatch) (*model.Settings, error)
	UploadAsset(ctx context.Context, actor Actor, kind string, file FileUpload) (*model.Settings, error)
}

type settingsService struct {
	repo     repository.SettingsRepository
	storage  storage.ObjectStorage
	activity ActivityService
	wsHub    Publisher
}

func NewSettingsService(repo repository.SettingsRepository, store storage.ObjectStorage, activity ActivityService, hub Publisher) SettingsService {
	return &settingsService{
		repo:     repo,
		storage:  store,
		activity: activity,
		wsHub:    hub,
	}
}

// Get returns the stored settings merged over the defaults, or the defaults
// when nothing has been stored yet.
func (s *settingsService) Get() (*model.Settings, error) {
	defaults := model.DefaultSettings()
	stored, err := s.repo.Get()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}

	fallback := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fallback(&stored.CompanyName, defaults.CompanyName)
	fallback(&stored.PrimaryColor, defaults.PrimaryColor)
	fallback(&stored.SecondaryColor, defaults.SecondaryColor)
	fallback(&stored.TertiaryColor, defaults.TertiaryColor)
	return stored, nil
}

func (s *settingsService) Update(actor Actor, patch *model.SettingsPatch) (*model.Settings, error) {
	if err := validator.Check(patch); err != nil {
		return nil, err
	}

	current, err := s.Get()
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return current, nil
	}
	before := *current

	patch.Apply(current)
	current.UpdatedAt = time.Now()
	current.UpdatedBy = actor.ID
	if err := s.repo.Save(current); err != nil {
		return nil, err
	}

	s.activity.Record(actor, "update", "settings", model.SettingsID, "updated company settings", before, current)
	if s.wsHub != nil {
		s.wsHub.Publish(ws.TopicSettings, current)
	}
	return current, nil
}

func (s *settingsService) UploadAsset(ctx context.Context, actor Actor, kind string, file FileUpload) (*model.Settings, error) {
	if kind != AssetLogo && kind != AssetFavicon {
		return nil, invalid("unknown asset %q", kind)
	}

	out, err := uploadFile(ctx, s.storage, "branding", file)
	if err != nil {
		return nil, err
	}

	patch := &model.SettingsPatch{}
	if kind == AssetLogo {
		patch.LogoURL = &out.URL
	} else {
		patch.FaviconURL = &out.URL
	}
	return s.Update(actor, patch)
}
