package flows

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

// RecoveryAccount is the directory view the flows operate on.
type RecoveryAccount struct {
	UserID    string
	Email     string
	FirstName string
	Active    bool
}

// TokenRow is the store-bound shape of a new token.
type TokenRow struct {
	UserID    string
	Secret    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
}

// TokenView is the resolved state of an existing token.
type TokenView struct {
	ID        string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Used      bool
	UsedAt    time.Time
}

// RequestMeta mirrors the public RequestContext.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// IssueOutcome is the result of RunIssue. Structurally identical for
// existing and unknown accounts; TokenID stays empty on the decoy path.
type IssueOutcome struct {
	TokenID string
}

// ValidateOutcome is the result of RunValidate.
type ValidateOutcome struct {
	TokenID   string
	ExpiresAt time.Time
	Account   RecoveryAccount
}

type RecoveryMetrics struct {
	Request           int
	RequestSuppressed int
	RequestFailure    int
	ValidateSuccess   int
	ValidateFailure   int
	ConsumeSuccess    int
	ConsumeFailure    int
	ConsumeRaceLost   int
	Superseded        int
	Expired           int
	SweepDeleted      int
	RateLimitHit      int
	DispatchFailure   int
}

type RecoveryEvents struct {
	Request   string
	Validate  string
	Consume   string
	Supersede string
	Sweep     string
	Dispatch  string
	RateLimit string
}

type RecoveryErrors struct {
	EngineNotReady       error
	Disabled             error
	EmailInvalid         error
	AccountDisabled      error
	TokenInvalid         error
	TokenUsed            error
	TokenExpired         error
	PasswordReuse        error
	PasswordUpdateFailed error
	RateLimited          error
	Unavailable          error
}

type RecoveryDeps struct {
	Enabled         bool
	TokenTTL        time.Duration
	Retention       time.Duration
	BaseURL         string
	DispatchTimeout time.Duration

	Now                  func() time.Time
	ClientIPFromContext  func(context.Context) string
	UserAgentFromContext func(context.Context) string

	CheckRequestLimiter func(context.Context, string, string) error
	CheckConsumeLimiter func(context.Context, string, string) error
	MapLimiterError     func(error) error

	FindAccountByEmail func(context.Context, string) (RecoveryAccount, error)
	FindAccountByID    func(context.Context, string) (RecoveryAccount, error)
	IsAccountNotFound  func(error) bool
	GetPasswordHash    func(context.Context, string) (string, error)
	SetPasswordHash    func(context.Context, string, string) error

	ValidatePolicy func(string) error
	HashPassword   func(string) (string, error)
	VerifyPassword func(string, string) (bool, error)

	NewSecret             func() (string, error)
	ValidSecretShape      func(string) bool
	SleepEnumerationDelay func(context.Context) error

	InsertToken          func(context.Context, TokenRow) (string, error)
	FindTokenBySecret    func(context.Context, string) (TokenView, error)
	IsTokenNotFound      func(error) bool
	ConditionalMarkUsed  func(context.Context, string, time.Time) (bool, error)
	BulkMarkUsed         func(context.Context, string, string, time.Time) (int, error)
	DeleteExpiredOrStale func(context.Context, time.Time, time.Duration) (int, error)
	MapStoreError        func(error) error

	SendRecoveryLink         func(context.Context, string, string, string, time.Time) error
	SendRecoveryConfirmation func(context.Context, string, string, string) error
	DetachContext            func(context.Context) context.Context

	MetricInc func(int)
	MetricAdd func(int, uint64)
	EmitAudit func(ctx context.Context, eventType string, success bool, userID, tokenID, ip string, failure error, meta func() map[string]string)

	Metrics RecoveryMetrics
	Events  RecoveryEvents
	Errors  RecoveryErrors
}

// RunIssue is the issuance flow: directory lookup, cascade supersede,
// secret generation, persist, link dispatch. Unknown accounts take a decoy
// path that matches the real one in shape and rough timing.
func RunIssue(ctx context.Context, email string, meta RequestMeta, deps RecoveryDeps) (IssueOutcome, error) {
	normalizeRecoveryDeps(&deps)

	if !deps.Enabled {
		deps.EmitAudit(ctx, deps.Events.Request, false, "", "", "", deps.Errors.Disabled, nil)
		return IssueOutcome{}, deps.Errors.Disabled
	}
	if deps.FindAccountByEmail == nil || deps.InsertToken == nil || deps.NewSecret == nil || deps.BulkMarkUsed == nil {
		return IssueOutcome{}, deps.Errors.EngineNotReady
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		deps.MetricInc(deps.Metrics.RequestFailure)
		deps.EmitAudit(ctx, deps.Events.Request, false, "", "", "", deps.Errors.EmailInvalid, func() map[string]string {
			return map[string]string{
				"reason": "malformed_email",
			}
		})
		return IssueOutcome{}, deps.Errors.EmailInvalid
	}

	ip := meta.IPAddress
	if ip == "" {
		ip = deps.ClientIPFromContext(ctx)
	}
	userAgent := meta.UserAgent
	if userAgent == "" {
		userAgent = deps.UserAgentFromContext(ctx)
	}

	if deps.CheckRequestLimiter != nil {
		if err := deps.CheckRequestLimiter(ctx, email, ip); err != nil {
			mapped := deps.MapLimiterError(err)
			deps.MetricInc(deps.Metrics.RequestFailure)
			deps.EmitAudit(ctx, deps.Events.Request, false, "", "", ip, mapped, nil)
			if errors.Is(mapped, deps.Errors.RateLimited) {
				deps.MetricInc(deps.Metrics.RateLimitHit)
				deps.EmitAudit(ctx, deps.Events.RateLimit, false, "", "", ip, mapped, func() map[string]string {
					return map[string]string{
						"operation": "recovery_request",
					}
				})
			}
			return IssueOutcome{}, mapped
		}
	}

	now := deps.Now()

	account, err := deps.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return IssueOutcome{}, err
		}
		if !deps.IsAccountNotFound(err) {
			deps.MetricInc(deps.Metrics.RequestFailure)
			deps.EmitAudit(ctx, deps.Events.Request, false, "", "", ip, deps.Errors.Unavailable, nil)
			return IssueOutcome{}, deps.Errors.Unavailable
		}

		// Anti-enumeration: burn the same work as the real path, answer
		// with the same shape.
		if sleepErr := deps.SleepEnumerationDelay(ctx); sleepErr != nil {
			return IssueOutcome{}, sleepErr
		}
		if _, genErr := deps.NewSecret(); genErr != nil {
			deps.MetricInc(deps.Metrics.RequestFailure)
			deps.EmitAudit(ctx, deps.Events.Request, false, "", "", ip, deps.Errors.Unavailable, func() map[string]string {
				return map[string]string{
					"reason": "decoy_generation_failed",
				}
			})
			return IssueOutcome{}, deps.Errors.Unavailable
		}
		deps.MetricInc(deps.Metrics.RequestSuppressed)
		deps.EmitAudit(ctx, deps.Events.Request, true, "", "", ip, nil, func() map[string]string {
			return map[string]string{
				"enumeration_safe": "true",
			}
		})
		return IssueOutcome{}, nil
	}

	if !account.Active {
		deps.MetricInc(deps.Metrics.RequestFailure)
		deps.EmitAudit(ctx, deps.Events.Request, false, account.UserID, "", ip, deps.Errors.AccountDisabled, nil)
		return IssueOutcome{}, deps.Errors.AccountDisabled
	}

	// At most one active token per user: supersede before issuing.
	// Best-effort; a failure here must not block issuance.
	if superseded, err := deps.BulkMarkUsed(ctx, account.UserID, "", now); err != nil {
		deps.EmitAudit(ctx, deps.Events.Supersede, false, account.UserID, "", ip, err, nil)
	} else if superseded > 0 {
		deps.MetricAdd(deps.Metrics.Superseded, uint64(superseded))
		deps.EmitAudit(ctx, deps.Events.Supersede, true, account.UserID, "", ip, nil, func() map[string]string {
			return map[string]string{
				"count":   strconv.Itoa(superseded),
				"trigger": "new_issuance",
			}
		})
	}

	secret, err := deps.NewSecret()
	if err != nil {
		deps.MetricInc(deps.Metrics.RequestFailure)
		deps.EmitAudit(ctx, deps.Events.Request, false, account.UserID, "", ip, deps.Errors.Unavailable, nil)
		return IssueOutcome{}, deps.Errors.Unavailable
	}

	expiresAt := now.Add(deps.TokenTTL)
	tokenID, err := deps.InsertToken(ctx, TokenRow{
		UserID:    account.UserID,
		Secret:    secret,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		IPAddress: ip,
		UserAgent: userAgent,
	})
	if err != nil {
		mapped := deps.MapStoreError(err)
		deps.MetricInc(deps.Metrics.RequestFailure)
		deps.EmitAudit(ctx, deps.Events.Request, false, account.UserID, "", ip, mapped, nil)
		return IssueOutcome{}, mapped
	}

	link := recoveryLink(deps.BaseURL, secret)
	dispatchAsync(ctx, deps, func(dctx context.Context) error {
		return deps.SendRecoveryLink(dctx, account.Email, account.FirstName, link, expiresAt)
	}, account.UserID, tokenID)

	deps.MetricInc(deps.Metrics.Request)
	deps.EmitAudit(ctx, deps.Events.Request, true, account.UserID, tokenID, ip, nil, nil)
	return IssueOutcome{TokenID: tokenID}, nil
}

// RunValidate is the read-only state check. On success it performs no
// mutation; the only write it may ever do is the defensive used flip on an
// expired row.
func RunValidate(ctx context.Context, secret string, deps RecoveryDeps) (ValidateOutcome, error) {
	normalizeRecoveryDeps(&deps)

	if !deps.Enabled {
		return ValidateOutcome{}, deps.Errors.Disabled
	}
	if deps.FindTokenBySecret == nil || deps.FindAccountByID == nil {
		return ValidateOutcome{}, deps.Errors.EngineNotReady
	}

	token, err := resolveToken(ctx, secret, deps, deps.Events.Validate, deps.Metrics.ValidateFailure)
	if err != nil {
		return ValidateOutcome{}, err
	}

	account, err := resolveAccount(ctx, token, deps, deps.Events.Validate, deps.Metrics.ValidateFailure)
	if err != nil {
		return ValidateOutcome{}, err
	}

	deps.MetricInc(deps.Metrics.ValidateSuccess)
	deps.EmitAudit(ctx, deps.Events.Validate, true, token.UserID, token.ID, deps.ClientIPFromContext(ctx), nil, nil)
	return ValidateOutcome{
		TokenID:   token.ID,
		ExpiresAt: token.ExpiresAt,
		Account:   account,
	}, nil
}

// RunConsume is the single-use consumption flow. Concurrent calls on the
// same secret are serialized by the store's conditional mark-used: exactly
// one caller reaches the password update.
func RunConsume(ctx context.Context, secret, newPassword string, meta RequestMeta, deps RecoveryDeps) error {
	normalizeRecoveryDeps(&deps)

	if !deps.Enabled {
		deps.EmitAudit(ctx, deps.Events.Consume, false, "", "", "", deps.Errors.Disabled, nil)
		return deps.Errors.Disabled
	}
	if deps.FindTokenBySecret == nil ||
		deps.FindAccountByID == nil ||
		deps.ValidatePolicy == nil ||
		deps.HashPassword == nil ||
		deps.VerifyPassword == nil ||
		deps.GetPasswordHash == nil ||
		deps.SetPasswordHash == nil ||
		deps.ConditionalMarkUsed == nil ||
		deps.BulkMarkUsed == nil {
		return deps.Errors.EngineNotReady
	}

	// Policy first: cheapest check, and its reason is the one failure the
	// caller may show verbatim.
	if err := deps.ValidatePolicy(newPassword); err != nil {
		deps.MetricInc(deps.Metrics.ConsumeFailure)
		deps.EmitAudit(ctx, deps.Events.Consume, false, "", "", deps.ClientIPFromContext(ctx), err, func() map[string]string {
			return map[string]string{
				"reason": "password_policy",
			}
		})
		return err
	}

	ip := meta.IPAddress
	if ip == "" {
		ip = deps.ClientIPFromContext(ctx)
	}

	if deps.CheckConsumeLimiter != nil {
		if err := deps.CheckConsumeLimiter(ctx, "", ip); err != nil {
			return consumeLimited(ctx, ip, err, deps)
		}
	}

	// Re-resolve the secret: an earlier Validate result may be stale.
	token, err := resolveToken(ctx, secret, deps, deps.Events.Consume, deps.Metrics.ConsumeFailure)
	if err != nil {
		return err
	}

	if deps.CheckConsumeLimiter != nil {
		if err := deps.CheckConsumeLimiter(ctx, token.ID, ""); err != nil {
			return consumeLimited(ctx, ip, err, deps)
		}
	}

	account, err := resolveAccount(ctx, token, deps, deps.Events.Consume, deps.Metrics.ConsumeFailure)
	if err != nil {
		return err
	}

	currentHash, err := deps.GetPasswordHash(ctx, token.UserID)
	if err != nil {
		deps.MetricInc(deps.Metrics.ConsumeFailure)
		deps.EmitAudit(ctx, deps.Events.Consume, false, token.UserID, token.ID, ip, deps.Errors.Unavailable, nil)
		return deps.Errors.Unavailable
	}
	same, err := deps.VerifyPassword(newPassword, currentHash)
	if err != nil {
		deps.MetricInc(deps.Metrics.ConsumeFailure)
		deps.EmitAudit(ctx, deps.Events.Consume, false, token.UserID, token.ID, ip, deps.Errors.Unavailable, nil)
		return deps.Errors.Unavailable
	}
	if same {
		deps.MetricInc(deps.Metrics.ConsumeFailure)
		deps.EmitAudit(ctx, deps.Events.Consume, false, token.UserID, token.ID, ip, deps.Errors.PasswordReuse, func() map[string]string {
			return map[string]string{
				"reason": "password_reuse",
			}
		})
		return deps.Errors.PasswordReuse
	}

	// Hash before the point of no return; a local hashing failure must not
	// burn the token.
	newHash, err := deps.HashPassword(newPassword)
	if err != nil {
		deps.MetricInc(deps.Metrics.ConsumeFailure)
		deps.EmitAudit(ctx, deps.Events.Consume, false, token.UserID, token.ID, ip, deps.Errors.Unavailable, nil)
		return deps.Errors.Unavailable
	}

	now := deps.Now()
	won, err := deps.ConditionalMarkUsed(ctx, token.ID, now)
	if err != nil {
		mapped := deps.MapStoreError(err)
		deps.MetricInc(deps.Metrics.ConsumeFailure)
		deps.EmitAudit(ctx, deps.Events.Consume, false, token.UserID, token.ID, ip, mapped, nil)
		return mapped
	}
	if !won {
		deps.MetricInc(deps.Metrics.ConsumeRaceLost)
		deps.MetricInc(deps.Metrics.ConsumeFailure)
		deps.EmitAudit(ctx, deps.Events.Consume, false, token.UserID, token.ID, ip, deps.Errors.TokenUsed, func() map[string]string {
			return map[string]string{
				"reason": "lost_consume_race",
			}
		})
		return deps.Errors.TokenUsed
	}

	if err := deps.SetPasswordHash(ctx, token.UserID, newHash); err != nil {
		// The token is consumed and stays consumed; no rollback. Callers
		// must treat this as fatal-retryable, not as a validation error.
		deps.MetricInc(deps.Metrics.ConsumeFailure)
		deps.EmitAudit(ctx, deps.Events.Consume, false, token.UserID, token.ID, ip, deps.Errors.PasswordUpdateFailed, func() map[string]string {
			return map[string]string{
				"reason": "directory_update_failed",
			}
		})
		return errors.Join(deps.Errors.PasswordUpdateFailed, err)
	}

	if superseded, err := deps.BulkMarkUsed(ctx, token.UserID, token.ID, now); err != nil {
		deps.EmitAudit(ctx, deps.Events.Supersede, false, token.UserID, token.ID, ip, err, nil)
	} else if superseded > 0 {
		deps.MetricAdd(deps.Metrics.Superseded, uint64(superseded))
		deps.EmitAudit(ctx, deps.Events.Supersede, true, token.UserID, token.ID, ip, nil, func() map[string]string {
			return map[string]string{
				"count":   strconv.Itoa(superseded),
				"trigger": "consumption",
			}
		})
	}

	dispatchAsync(ctx, deps, func(dctx context.Context) error {
		return deps.SendRecoveryConfirmation(dctx, account.Email, account.FirstName, ip)
	}, token.UserID, token.ID)

	deps.MetricInc(deps.Metrics.ConsumeSuccess)
	deps.EmitAudit(ctx, deps.Events.Consume, true, token.UserID, token.ID, ip, nil, nil)
	return nil
}

// RunSweep removes terminal rows: expired, or consumed longer ago than the
// retention window.
func RunSweep(ctx context.Context, deps RecoveryDeps) (int, error) {
	normalizeRecoveryDeps(&deps)

	if !deps.Enabled {
		return 0, deps.Errors.Disabled
	}
	if deps.DeleteExpiredOrStale == nil {
		return 0, deps.Errors.EngineNotReady
	}

	count, err := deps.DeleteExpiredOrStale(ctx, deps.Now(), deps.Retention)
	if err != nil {
		mapped := deps.MapStoreError(err)
		deps.EmitAudit(ctx, deps.Events.Sweep, false, "", "", "", mapped, nil)
		return 0, mapped
	}

	deps.MetricAdd(deps.Metrics.SweepDeleted, uint64(count))
	deps.EmitAudit(ctx, deps.Events.Sweep, true, "", "", "", nil, func() map[string]string {
		return map[string]string{
			"deleted": strconv.Itoa(count),
		}
	})
	return count, nil
}

// resolveToken applies the shared reason checks in priority order:
// not found, already used, expired.
func resolveToken(ctx context.Context, secret string, deps RecoveryDeps, event string, failureMetric int) (TokenView, error) {
	ip := deps.ClientIPFromContext(ctx)

	if !deps.ValidSecretShape(secret) {
		deps.MetricInc(failureMetric)
		deps.EmitAudit(ctx, event, false, "", "", ip, deps.Errors.TokenInvalid, func() map[string]string {
			return map[string]string{
				"reason": "malformed_secret",
			}
		})
		return TokenView{}, deps.Errors.TokenInvalid
	}

	token, err := deps.FindTokenBySecret(ctx, secret)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return TokenView{}, err
		}
		if deps.IsTokenNotFound(err) {
			deps.MetricInc(failureMetric)
			deps.EmitAudit(ctx, event, false, "", "", ip, deps.Errors.TokenInvalid, nil)
			return TokenView{}, deps.Errors.TokenInvalid
		}
		mapped := deps.MapStoreError(err)
		deps.MetricInc(failureMetric)
		deps.EmitAudit(ctx, event, false, "", "", ip, mapped, nil)
		return TokenView{}, mapped
	}

	if token.Used {
		deps.MetricInc(failureMetric)
		deps.EmitAudit(ctx, event, false, token.UserID, token.ID, ip, deps.Errors.TokenUsed, nil)
		return TokenView{}, deps.Errors.TokenUsed
	}

	if deps.Now().After(token.ExpiresAt) {
		// Expired is terminal even with used=false. Flip the flag
		// defensively so the row reads terminal everywhere; outcome of
		// the flip does not change the answer. The expiry reason is only
		// reported on the first observation: once flipped, later lookups
		// hit the used check above. Both collapse to the same generic
		// message at the caller.
		if deps.ConditionalMarkUsed != nil {
			_, _ = deps.ConditionalMarkUsed(ctx, token.ID, deps.Now())
		}
		deps.MetricInc(deps.Metrics.Expired)
		deps.MetricInc(failureMetric)
		deps.EmitAudit(ctx, event, false, token.UserID, token.ID, ip, deps.Errors.TokenExpired, nil)
		return TokenView{}, deps.Errors.TokenExpired
	}

	return token, nil
}

func resolveAccount(ctx context.Context, token TokenView, deps RecoveryDeps, event string, failureMetric int) (RecoveryAccount, error) {
	ip := deps.ClientIPFromContext(ctx)

	account, err := deps.FindAccountByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return RecoveryAccount{}, err
		}
		if deps.IsAccountNotFound(err) {
			// Orphaned row: the account vanished underneath the token.
			deps.MetricInc(failureMetric)
			deps.EmitAudit(ctx, event, false, token.UserID, token.ID, ip, deps.Errors.TokenInvalid, func() map[string]string {
				return map[string]string{
					"reason": "account_missing",
				}
			})
			return RecoveryAccount{}, deps.Errors.TokenInvalid
		}
		deps.MetricInc(failureMetric)
		deps.EmitAudit(ctx, event, false, token.UserID, token.ID, ip, deps.Errors.Unavailable, nil)
		return RecoveryAccount{}, deps.Errors.Unavailable
	}

	if !account.Active {
		deps.MetricInc(failureMetric)
		deps.EmitAudit(ctx, event, false, token.UserID, token.ID, ip, deps.Errors.AccountDisabled, nil)
		return RecoveryAccount{}, deps.Errors.AccountDisabled
	}

	return account, nil
}

func consumeLimited(ctx context.Context, ip string, err error, deps RecoveryDeps) error {
	mapped := deps.MapLimiterError(err)
	deps.MetricInc(deps.Metrics.ConsumeFailure)
	deps.EmitAudit(ctx, deps.Events.Consume, false, "", "", ip, mapped, nil)
	if errors.Is(mapped, deps.Errors.RateLimited) {
		deps.MetricInc(deps.Metrics.RateLimitHit)
		deps.EmitAudit(ctx, deps.Events.RateLimit, false, "", "", ip, mapped, func() map[string]string {
			return map[string]string{
				"operation": "recovery_consume",
			}
		})
	}
	return mapped
}

// dispatchAsync runs a notification send in the background. The security
// state change already happened; a dispatch failure is audited, never
// propagated.
func dispatchAsync(ctx context.Context, deps RecoveryDeps, send func(context.Context) error, userID, tokenID string) {
	detached := deps.DetachContext(ctx)
	timeout := deps.DispatchTimeout

	go func() {
		dctx := detached
		if timeout > 0 {
			var cancel context.CancelFunc
			dctx, cancel = context.WithTimeout(detached, timeout)
			defer cancel()
		}
		if err := send(dctx); err != nil {
			deps.MetricInc(deps.Metrics.DispatchFailure)
			deps.EmitAudit(context.Background(), deps.Events.Dispatch, false, userID, tokenID, "", err, nil)
		}
	}()
}

func recoveryLink(baseURL, secret string) string {
	base := strings.TrimSuffix(baseURL, "/")
	return base + "/auth/reset-password?token=" + secret
}

func normalizeRecoveryDeps(deps *RecoveryDeps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.UserAgentFromContext == nil {
		deps.UserAgentFromContext = func(context.Context) string { return "" }
	}
	if deps.SleepEnumerationDelay == nil {
		deps.SleepEnumerationDelay = func(context.Context) error { return nil }
	}
	if deps.ValidSecretShape == nil {
		deps.ValidSecretShape = func(s string) bool { return s != "" }
	}
	if deps.IsAccountNotFound == nil {
		deps.IsAccountNotFound = func(error) bool { return false }
	}
	if deps.IsTokenNotFound == nil {
		deps.IsTokenNotFound = func(error) bool { return false }
	}
	if deps.MapLimiterError == nil {
		deps.MapLimiterError = func(error) error { return deps.Errors.Unavailable }
	}
	if deps.MapStoreError == nil {
		deps.MapStoreError = func(error) error { return deps.Errors.Unavailable }
	}
	if deps.DetachContext == nil {
		deps.DetachContext = context.WithoutCancel
	}
	if deps.SendRecoveryLink == nil {
		deps.SendRecoveryLink = func(context.Context, string, string, string, time.Time) error { return nil }
	}
	if deps.SendRecoveryConfirmation == nil {
		deps.SendRecoveryConfirmation = func(context.Context, string, string, string) error { return nil }
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.MetricAdd == nil {
		deps.MetricAdd = func(int, uint64) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, string, error, func() map[string]string) {}
	}
}
