package users

import (
	"context"
	"strings"

	"github.com/gigly/gigly-backend/pkg/auth"
	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
)

const setupCompletePath = "stripe-account-setup-complete"

// CreateStripe returns a hosted onboarding link for the caller's connected
// account, creating the account on first use. Callers without a user row get
// a nil URL.
func (s *service) CreateStripe(ctx context.Context, identity *auth.Identity) (OnboardingLinkDTO, error) {
	if identity == nil {
		return OnboardingLinkDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "unauthorized")
	}
	user, err := s.lookup(s.repo.FindByToken(ctx, identity.TokenIdentifier))
	if err != nil {
		return OnboardingLinkDTO{}, err
	}
	if user == nil {
		return OnboardingLinkDTO{}, nil
	}

	accountID, err := s.ensureAccount(ctx, user)
	if err != nil {
		return OnboardingLinkDTO{}, err
	}

	link, err := s.accounts.CreateOnboardingLink(ctx, accountID,
		s.app.PublicURL(),
		s.app.PublicURL(setupCompletePath, user.ID.String()),
	)
	if err != nil {
		return OnboardingLinkDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create onboarding link")
	}
	return OnboardingLinkDTO{URL: &link.URL}, nil
}

// ensureAccount returns the user's connected account id, creating and
// persisting one when missing. A concurrent call that persisted first wins.
func (s *service) ensureAccount(ctx context.Context, user *UserDTO) (string, error) {
	if user.StripeAccountID != nil && strings.TrimSpace(*user.StripeAccountID) != "" {
		return *user.StripeAccountID, nil
	}

	account, err := s.accounts.CreateStandardAccount(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe account")
	}

	won, err := s.repo.SetStripeAccountIDIfEmpty(ctx, user.ID, account.ID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store stripe account id")
	}
	if won {
		return account.ID, nil
	}

	stored, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload user")
	}
	if stored.StripeAccountID == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "stripe account id not persisted")
	}
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"user_id":        user.ID.String(),
			"orphan_account": account.ID,
			"stored_account": *stored.StripeAccountID,
		})
		s.logg.Warn(ctx, "concurrent stripe onboarding created an unused account")
	}
	return *stored.StripeAccountID, nil
}

// RefreshStripeSetup re-reads the connected account and records whether the
// seller finished onboarding.
func (s *service) RefreshStripeSetup(ctx context.Context, identity *auth.Identity) (*UserDTO, error) {
	user, err := s.requireCaller(ctx, identity)
	if err != nil {
		return nil, err
	}
	if user.StripeAccountID == nil || *user.StripeAccountID == "" {
		return FromModel(user), nil
	}

	account, err := s.accounts.GetAccount(ctx, *user.StripeAccountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe account")
	}
	if account.DetailsSubmitted != user.StripeAccountSetupComplete {
		if err := s.repo.UpdateStripeSetup(ctx, user.ID, account.DetailsSubmitted); err != nil {
			return nil, mapUpdateError(err, "update stripe setup")
		}
		user.StripeAccountSetupComplete = account.DetailsSubmitted
	}
	return FromModel(user), nil
}
