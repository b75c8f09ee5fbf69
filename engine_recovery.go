package goRecovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nforsey/goRecovery/internal"
	internalflows "github.com/nforsey/goRecovery/internal/flows"
	"github.com/nforsey/goRecovery/internal/limiters"
	"github.com/nforsey/goRecovery/policy"
	"github.com/redis/go-redis/v9"
)

// RequestRecovery describes the requestrecovery operation and its observable behavior.
//
// RequestRecovery may return an error when input validation, dependency calls, or security checks fail.
// RequestRecovery does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RequestRecovery(ctx context.Context, email string) (IssueResult, error) {
	meta := internalflows.RequestMeta{
		IPAddress: clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
	}
	outcome, err := internalflows.RunIssue(ctx, email, meta, e.recoveryFlowDeps())
	if err != nil {
		return IssueResult{}, err
	}
	return IssueResult{TokenID: outcome.TokenID}, nil
}

// ValidateToken describes the validatetoken operation and its observable behavior.
//
// ValidateToken may return an error when input validation, dependency calls, or security checks fail.
// ValidateToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateToken(ctx context.Context, secret string) (TokenValidation, error) {
	outcome, err := internalflows.RunValidate(ctx, secret, e.recoveryFlowDeps())
	if err != nil {
		return TokenValidation{}, err
	}
	return TokenValidation{
		TokenID:   outcome.TokenID,
		ExpiresAt: outcome.ExpiresAt,
		Account: AccountSummary{
			ID:        outcome.Account.UserID,
			Email:     outcome.Account.Email,
			FirstName: outcome.Account.FirstName,
		},
	}, nil
}

// ConsumeToken describes the consumetoken operation and its observable behavior.
//
// ConsumeToken may return an error when input validation, dependency calls, or security checks fail.
// ConsumeToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ConsumeToken(ctx context.Context, secret, newPassword string) error {
	meta := internalflows.RequestMeta{
		IPAddress: clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
	}
	return internalflows.RunConsume(ctx, secret, newPassword, meta, e.recoveryFlowDeps())
}

// SweepTokens describes the sweeptokens operation and its observable behavior.
//
// SweepTokens may return an error when input validation, dependency calls, or security checks fail.
// SweepTokens does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SweepTokens(ctx context.Context) (int, error) {
	return internalflows.RunSweep(ctx, e.recoveryFlowDeps())
}

func (e *Engine) recoveryFlowDeps() internalflows.RecoveryDeps {
	var cfg Config
	if e != nil {
		cfg = e.config
	}

	deps := internalflows.RecoveryDeps{
		Enabled:         cfg.Recovery.Enabled,
		TokenTTL:        cfg.Recovery.TokenTTL,
		Retention:       cfg.Recovery.Retention,
		BaseURL:         cfg.Recovery.BaseURL,
		DispatchTimeout: cfg.Recovery.DispatchTimeout,

		Now:                  time.Now,
		ClientIPFromContext:  clientIPFromContext,
		UserAgentFromContext: userAgentFromContext,

		MapLimiterError: mapRecoveryLimiterError,
		MapStoreError:   mapRecoveryStoreError,
		IsAccountNotFound: func(err error) bool {
			return errors.Is(err, ErrAccountNotFound)
		},
		IsTokenNotFound: func(err error) bool {
			return errors.Is(err, ErrTokenNotFound)
		},

		ValidatePolicy: validatePasswordPolicy,

		NewSecret:             internal.NewRecoverySecret,
		ValidSecretShape:      internal.ValidSecretShape,
		SleepEnumerationDelay: internal.EnumerationDelay,

		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		MetricAdd: func(id int, delta uint64) {
			e.metricAdd(MetricID(id), delta)
		},
		EmitAudit: e.emitAudit,

		Metrics: internalflows.RecoveryMetrics{
			Request:           int(MetricRecoveryRequest),
			RequestSuppressed: int(MetricRecoveryRequestSuppressed),
			RequestFailure:    int(MetricRecoveryRequestFailure),
			ValidateSuccess:   int(MetricValidateSuccess),
			ValidateFailure:   int(MetricValidateFailure),
			ConsumeSuccess:    int(MetricConsumeSuccess),
			ConsumeFailure:    int(MetricConsumeFailure),
			ConsumeRaceLost:   int(MetricConsumeRaceLost),
			Superseded:        int(MetricTokenSuperseded),
			Expired:           int(MetricTokenExpired),
			SweepDeleted:      int(MetricSweepDeleted),
			RateLimitHit:      int(MetricRateLimitHit),
			DispatchFailure:   int(MetricDispatchFailure),
		},
		Events: internalflows.RecoveryEvents{
			Request:   auditEventRecoveryRequest,
			Validate:  auditEventRecoveryValidate,
			Consume:   auditEventRecoveryConsume,
			Supersede: auditEventRecoverySupersede,
			Sweep:     auditEventRecoverySweep,
			Dispatch:  auditEventRecoveryDispatch,
			RateLimit: auditEventRateLimit,
		},
		Errors: internalflows.RecoveryErrors{
			EngineNotReady:       ErrEngineNotReady,
			Disabled:             ErrRecoveryDisabled,
			EmailInvalid:         ErrEmailInvalid,
			AccountDisabled:      ErrAccountDisabled,
			TokenInvalid:         ErrTokenInvalid,
			TokenUsed:            ErrTokenUsed,
			TokenExpired:         ErrTokenExpired,
			PasswordReuse:        ErrPasswordReuse,
			PasswordUpdateFailed: ErrPasswordUpdateFailed,
			RateLimited:          ErrRecoveryRateLimited,
			Unavailable:          ErrRecoveryUnavailable,
		},
	}

	if e != nil && e.now != nil {
		deps.Now = e.now
	}
	if e != nil && e.limiter != nil {
		deps.CheckRequestLimiter = e.limiter.CheckRequest
		deps.CheckConsumeLimiter = e.limiter.CheckConsume
	}
	if e != nil && e.directory != nil {
		deps.FindAccountByEmail = func(ctx context.Context, email string) (internalflows.RecoveryAccount, error) {
			record, err := e.directory.FindAccountByEmail(ctx, email)
			if err != nil {
				return internalflows.RecoveryAccount{}, err
			}
			return recoveryAccountView(record), nil
		}
		deps.FindAccountByID = func(ctx context.Context, id string) (internalflows.RecoveryAccount, error) {
			record, err := e.directory.FindAccountByID(ctx, id)
			if err != nil {
				return internalflows.RecoveryAccount{}, err
			}
			return recoveryAccountView(record), nil
		}
		deps.GetPasswordHash = e.directory.GetPasswordHash
		deps.SetPasswordHash = e.directory.SetPasswordHash
	}
	if e != nil && e.passwordHash != nil {
		deps.HashPassword = e.passwordHash.Hash
		deps.VerifyPassword = e.passwordHash.Verify
	}
	if e != nil && e.tokens != nil {
		deps.InsertToken = func(ctx context.Context, row internalflows.TokenRow) (string, error) {
			return e.tokens.Insert(ctx, RecoveryToken{
				UserID:    row.UserID,
				Secret:    row.Secret,
				IssuedAt:  row.IssuedAt,
				ExpiresAt: row.ExpiresAt,
				Request: RequestContext{
					IPAddress: row.IPAddress,
					UserAgent: row.UserAgent,
				},
			})
		}
		deps.FindTokenBySecret = func(ctx context.Context, secret string) (internalflows.TokenView, error) {
			token, err := e.tokens.FindBySecret(ctx, secret)
			if err != nil {
				return internalflows.TokenView{}, err
			}
			return internalflows.TokenView{
				ID:        token.ID,
				UserID:    token.UserID,
				IssuedAt:  token.IssuedAt,
				ExpiresAt: token.ExpiresAt,
				Used:      token.Used,
				UsedAt:    token.UsedAt,
			}, nil
		}
		deps.ConditionalMarkUsed = e.tokens.ConditionalMarkUsed
		deps.BulkMarkUsed = e.tokens.BulkMarkUsed
		deps.DeleteExpiredOrStale = e.tokens.DeleteExpiredOrStale
	}
	if e != nil && e.dispatcher != nil {
		deps.SendRecoveryLink = e.dispatcher.SendRecoveryLink
		deps.SendRecoveryConfirmation = e.dispatcher.SendRecoveryConfirmation
	}

	return deps
}

func recoveryAccountView(record AccountRecord) internalflows.RecoveryAccount {
	return internalflows.RecoveryAccount{
		UserID:    record.ID,
		Email:     record.Email,
		FirstName: record.FirstName,
		Active:    record.Status == AccountActive,
	}
}

func validatePasswordPolicy(candidate string) error {
	if ok, reason := policy.Validate(candidate); !ok {
		return fmt.Errorf("%w: %s", ErrPasswordPolicy, reason)
	}
	return nil
}

func mapRecoveryLimiterError(err error) error {
	switch {
	case errors.Is(err, limiters.ErrRecoveryRateLimited):
		return ErrRecoveryRateLimited
	case errors.Is(err, limiters.ErrRecoveryRedisUnavailable):
		return ErrRecoveryUnavailable
	default:
		return ErrRecoveryUnavailable
	}
}

func mapRecoveryStoreError(err error) error {
	switch {
	case errors.Is(err, ErrTokenNotFound), errors.Is(err, redis.Nil):
		return ErrTokenInvalid
	default:
		return ErrRecoveryUnavailable
	}
}
