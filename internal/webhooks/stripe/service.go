package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
	"github.com/gigly/gigly-backend/pkg/logger"
)

type accountRepository interface {
	UpdateStripeSetupByAccount(ctx context.Context, accountID string, complete bool) error
}

type ServiceParams struct {
	Accounts accountRepository
	Logger   *logger.Logger
}

// Service applies payments-provider events to local state. Only connected
// account updates matter; every other event is acknowledged untouched.
type Service struct {
	accounts accountRepository
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Accounts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "account repo required")
	}
	return &Service{accounts: params.Accounts, logg: params.Logger}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeAccountUpdated:
		var account stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &account); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode account event")
		}
		return s.syncAccount(ctx, &account)
	default:
		return nil
	}
}

// syncAccount mirrors details_submitted onto the owning user. Accounts no
// user owns, such as ones orphaned by a lost onboarding race, are skipped.
func (s *Service) syncAccount(ctx context.Context, account *stripe.Account) error {
	accountID := strings.TrimSpace(account.ID)
	if accountID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id missing")
	}

	err := s.accounts.UpdateStripeSetupByAccount(ctx, accountID, account.DetailsSubmitted)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "stripe_account_id", accountID), "account update for unknown account")
		}
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stripe setup")
	}
	return nil
}
