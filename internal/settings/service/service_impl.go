package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fitora/fitora/internal/cache"
	"github.com/fitora/fitora/internal/config"
	settingsdomain "github.com/fitora/fitora/internal/settings/domain"
	"github.com/fitora/fitora/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const settingTTL = 30 * time.Second

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Invoicing *config.InvoicingConfigHolder
}

type Service struct {
	log       *zap.Logger
	invoicing *config.InvoicingConfigHolder

	settingrepo repository.Repository[settingsdomain.Setting]
	cached      cache.Cache[string, settingsdomain.Setting]
}

func NewService(p ServiceParam) settingsdomain.Service {
	return &Service{
		log:       p.Log.Named("settings.service"),
		invoicing: p.Invoicing,

		settingrepo: repository.ProvideStore[settingsdomain.Setting](p.DB),
		cached:      cache.NewTTLCache[string, settingsdomain.Setting](),
	}
}

func (s *Service) General(ctx context.Context) (settingsdomain.GeneralSettings, error) {
	row, err := s.load(ctx, settingsdomain.SettingGeneral)
	if err != nil {
		return settingsdomain.GeneralSettings{}, err
	}
	if row == nil {
		return settingsdomain.GeneralSettings{}, settingsdomain.ErrGeneralSettingsMissing
	}

	var general settingsdomain.GeneralSettings
	if err := decodeValue(row.Value, &general); err != nil {
		return settingsdomain.GeneralSettings{}, err
	}
	if general.BusinessName == "" {
		return settingsdomain.GeneralSettings{}, settingsdomain.ErrGeneralSettingsMissing
	}
	return general, nil
}

func (s *Service) Invoice(ctx context.Context) (settingsdomain.InvoiceSettings, error) {
	defaults := s.defaults()

	row, err := s.load(ctx, settingsdomain.SettingInvoice)
	if err != nil {
		return settingsdomain.InvoiceSettings{}, err
	}
	if row == nil {
		s.log.Debug("invoice settings missing, using defaults",
			zap.Float64("vat_rate", defaults.VATRate))
		return defaults, nil
	}

	invoice := defaults
	if err := decodeValue(row.Value, &invoice); err != nil {
		return settingsdomain.InvoiceSettings{}, err
	}
	if invoice.VATRate < 0 || invoice.VATRate > 100 {
		invoice.VATRate = defaults.VATRate
	}
	return invoice, nil
}

func (s *Service) defaults() settingsdomain.InvoiceSettings {
	cfg := s.invoicing.Get()
	return settingsdomain.InvoiceSettings{
		VATRate:      cfg.DefaultVATRate,
		AutoGenerate: cfg.AutoGenerate,
	}
}

func (s *Service) load(ctx context.Context, name string) (*settingsdomain.Setting, error) {
	if row, ok := s.cached.Get(name); ok {
		return &row, nil
	}

	row, err := s.settingrepo.FindOne(ctx, &settingsdomain.Setting{Name: name})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	s.cached.Set(name, *row, settingTTL)
	return row, nil
}

func decodeValue(value map[string]any, target any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}
