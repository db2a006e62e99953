package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/crewhub/internal/users/auth"
	"github.com/aussiebroadwan/crewhub/internal/users/domain"
	"github.com/aussiebroadwan/crewhub/internal/users/mail"
	"github.com/aussiebroadwan/crewhub/internal/users/store"
	"github.com/aussiebroadwan/crewhub/pkg/cryptox"
	"github.com/aussiebroadwan/crewhub/pkg/idx"
	"github.com/aussiebroadwan/crewhub/pkg/slogx"
)

var (
	ErrInsufficientQuota = errors.New("no invitations remaining")
	ErrEmailInUse        = errors.New("email already registered or invited")
	ErrUnknownToken      = errors.New("registration token unknown or already consumed")
	ErrInvalidKey        = errors.New("registration key does not match")
)

// Notifier hands a message off for asynchronous delivery. Implemented by
// mail.Dispatcher.
type Notifier interface {
	Enqueue(msg mail.Message)
}

type InviteService struct {
	Store    store.Store
	Notifier Notifier

	// BaseGrant is the invitation quota a completed registration starts
	// with before the referral bonus is applied.
	BaseGrant int

	// ReferralBonus is the permanent quota increase credited to a user who
	// registers through an invitation. Defaults to BaseGrant when zero.
	ReferralBonus int
}

func (s *InviteService) bonus() int {
	if s.ReferralBonus > 0 {
		return s.ReferralBonus
	}
	return s.BaseGrant
}

// Invite debits the inviter's quota and records a pending registration for
// the invitee, then hands the secret key to the mail dispatcher. The debit
// and the pending insert commit together or not at all; mail delivery is
// outside the transactional boundary and best-effort.
func (s *InviteService) Invite(
	ctx context.Context,
	caller auth.Principal,
	inviterID string,
	inviteeEmail string,
) error {
	log := slogx.FromContext(ctx)

	// 1. Ownership: a user only spends their own quota.
	if caller.UserID != inviterID {
		log.Warn("invite on another user's behalf denied",
			slog.String("caller_id", caller.UserID),
			slog.String("inviter_id", inviterID),
		)
		return ErrForbidden
	}

	inviteeEmail = strings.ToLower(strings.TrimSpace(inviteeEmail))
	if inviteeEmail == "" {
		return ErrInvalidRequest
	}

	// 2. Self-invites are pointless and always denied.
	if caller.Email == inviteeEmail {
		return ErrForbidden
	}

	// 3. Generate the public login token and the secret key up front. Only
	// the key's fingerprint is persisted; the raw key exists in the mail
	// message and nowhere else.
	loginToken, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		log.Error("failed to generate login token", slog.Any("error", err))
		return err
	}
	secretKey, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate secret key", slog.Any("error", err))
		return err
	}

	pending := domain.PendingRegistration{
		ID:            idx.New().String(),
		Email:         inviteeEmail,
		LoginToken:    loginToken,
		SecretKeyHash: cryptox.FingerprintToken(secretKey),
		InviterID:     inviterID,
	}

	// 4. Check-then-create and the quota debit share one transaction; the
	// unique email constraints on users and pending_registrations backstop
	// the race between concurrent invites for the same address.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByID(ctx, inviterID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if _, err := tx.Users().GetUserByEmail(ctx, inviteeEmail); err == nil {
			return ErrEmailInUse
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if _, err := tx.Pending().GetPendingByEmail(ctx, inviteeEmail); err == nil {
			return ErrEmailInUse
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		ok, err := tx.Accounts().Debit(ctx, inviterID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientQuota
		}

		if err := tx.Pending().CreatePending(ctx, pending); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailInUse
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEmailInUse) || errors.Is(err, ErrInsufficientQuota) ||
			errors.Is(err, ErrUserNotFound) {
			log.Warn("invite rejected",
				slog.String("inviter_id", inviterID),
				slog.String("invitee_email", inviteeEmail),
				slog.Any("reason", err),
			)
			return err
		}
		log.Error("failed to create invitation", slog.Any("error", err))
		return err
	}

	// 5. Fire and forget. The invite has committed; whether the mail makes
	// it is not this request's problem.
	s.Notifier.Enqueue(invitationMessage(inviteeEmail, loginToken, secretKey))

	log.Info("invitation created",
		slog.String("inviter_id", inviterID),
		slog.String("invitee_email", inviteeEmail),
		slog.String("pending_id", pending.ID),
	)

	return nil
}

// CompleteRegistration consumes a pending registration: it verifies the
// mailed secret key against the stored fingerprint, creates the user, and
// credits the referral bonus on top of the base grant. The inviter is not
// required to still exist. Replaying a consumed token fails with
// ErrUnknownToken.
func (s *InviteService) CompleteRegistration(
	ctx context.Context,
	loginToken string,
	secretKey string,
	firstName, lastName string,
	password string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if loginToken == "" || secretKey == "" {
		return domain.User{}, ErrInvalidRequest
	}

	// 1. The token is the public identifier from the registration link.
	pending, err := s.Store.Pending().GetPendingByToken(ctx, loginToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("registration attempted with unknown token")
			return domain.User{}, ErrUnknownToken
		}
		log.Error("failed to fetch pending registration", slog.Any("error", err))
		return domain.User{}, err
	}

	// 2. The key proves possession of the invited mailbox. A mismatch
	// leaves everything untouched so the invitee can retry.
	if !cryptox.VerifyTokenFingerprint(secretKey, pending.SecretKeyHash) {
		log.Warn("registration attempted with wrong key",
			slog.String("pending_id", pending.ID),
		)
		return domain.User{}, ErrInvalidKey
	}

	// 3. Names from the registration form win over what the inviter typed;
	// fall back to the stored ones.
	if firstName == "" {
		firstName = pending.FirstName
	}
	if lastName == "" {
		lastName = pending.LastName
	}

	var passwordHash string
	if password != "" {
		passwordHash, err = cryptox.HashPassword(password)
		if err != nil {
			log.Error("failed to hash password", slog.Any("error", err))
			return domain.User{}, err
		}
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        pending.Email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
	}

	// 4. User insert, base grant, referral bonus and pending delete commit
	// as one unit. The record is re-read inside the transaction: a
	// concurrent completion may have consumed it since step 1, and that is
	// a replay, not an email conflict.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Pending().GetPendingByToken(ctx, loginToken); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnknownToken
			}
			return err
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailInUse
			}
			return err
		}

		if err := tx.Accounts().CreateAccount(ctx, domain.InvitationAccount{
			UserID:        user.ID,
			OriginalCount: s.BaseGrant,
			CurrentCount:  s.BaseGrant,
		}); err != nil {
			return err
		}

		// The bonus is a permanent increase: both counters grow.
		if err := tx.Accounts().Credit(ctx, user.ID, s.bonus()); err != nil {
			return err
		}

		return tx.Pending().DeletePending(ctx, pending.ID)
	})
	if err != nil {
		if errors.Is(err, ErrEmailInUse) || errors.Is(err, ErrUnknownToken) {
			return domain.User{}, err
		}
		log.Error("failed to complete registration",
			slog.String("pending_id", pending.ID),
			slog.Any("error", err),
		)
		return domain.User{}, err
	}

	log.Info("registration completed",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
		slog.String("inviter_id", pending.InviterID),
	)

	return user, nil
}

func invitationMessage(email, loginToken, secretKey string) mail.Message {
	return mail.Message{
		To:      email,
		Subject: "You have been invited to crewhub",
		Body: fmt.Sprintf(
			"You have been invited to crewhub.\n\n"+
				"Complete your registration at /v1/register/%s with the key below:\n\n%s\n",
			loginToken,
			secretKey,
		),
	}
}
