package model

import "time"

const SettingsID = "main"

// Settings is the single company-wide configuration record.
type Settings struct {
	ID                   string    `gorm:"type:varchar(20);primaryKey" json:"-"`
	CompanyName          string    `gorm:"type:varchar(255)" json:"companyName"`
	PrimaryColor         string    `gorm:"type:varchar(9)" json:"primaryColor"`
	SecondaryColor       string    `gorm:"type:varchar(9)" json:"secondaryColor"`
	TertiaryColor        string    `gorm:"type:varchar(9)" json:"tertiaryColor"`
	LogoURL              string    `gorm:"type:text" json:"logoUrl"`
	FaviconURL           string    `gorm:"type:text" json:"faviconUrl"`
	NotifyEmail          bool      `json:"notify_email"`
	NotifyLowStock       bool      `json:"notify_lowStock"`
	NotifyExpiry         bool      `json:"notify_expiry"`
	NotifyOverduePayment bool      `json:"notify_overduePayment"`
	UpdatedAt            time.Time `json:"updatedAt"`
	UpdatedBy            string    `gorm:"type:varchar(64)" json:"updatedBy,omitempty"`
}

// DefaultSettings is served until a record has been stored.
func DefaultSettings() Settings {
	return Settings{
		ID:                   SettingsID,
		CompanyName:          "Estampa Fina",
		PrimaryColor:         "#1a1a1a",
		SecondaryColor:       "#800000",
		TertiaryColor:        "#a0a0a0",
		NotifyLowStock:       true,
		NotifyExpiry:         true,
		NotifyOverduePayment: true,
	}
}

// SettingsPatch lists the fields a caller wants to change. Nil fields are kept.
type SettingsPatch struct {
	CompanyName          *string `json:"companyName" validate:"omitempty,min=1,max=255"`
	PrimaryColor         *string `json:"primaryColor" validate:"omitempty,hexcolor"`
	SecondaryColor       *string `json:"secondaryColor" validate:"omitempty,hexcolor"`
	TertiaryColor        *string `json:"tertiaryColor" validate:"omitempty,hexcolor"`
	LogoURL              *string `json:"logoUrl"`
	FaviconURL           *string `json:"faviconUrl"`
	NotifyEmail          *bool   `json:"notify_email"`
	NotifyLowStock       *bool   `json:"notify_lowStock"`
	NotifyExpiry         *bool   `json:"notify_expiry"`
	NotifyOverduePayment *bool   `json:"notify_overduePayment"`
}

// Apply merges p over s.
func (p *SettingsPatch) Apply(s *Settings) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&s.CompanyName, p.CompanyName)
	setString(&s.PrimaryColor, p.PrimaryColor)
	setString(&s.SecondaryColor, p.SecondaryColor)
	setString(&s.TertiaryColor, p.TertiaryColor)
	setString(&s.LogoURL, p.LogoURL)
	setString(&s.FaviconURL, p.FaviconURL)
	setBool(&s.NotifyEmail, p.NotifyEmail)
	setBool(&s.NotifyLowStock, p.NotifyLowStock)
	setBool(&s.NotifyExpiry, p.NotifyExpiry)
	setBool(&s.NotifyOverduePayment, p.NotifyOverduePayment)
}

// Empty reports whether the patch changes nothing.
func (p *SettingsPatch) Empty() bool {
	return *p == SettingsPatch{}
}
