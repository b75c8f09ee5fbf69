package goRecovery

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want FailureClass
	}{
		{nil, ClassUnknown},
		{errors.New("something else"), ClassUnknown},
		{ErrPasswordPolicy, ClassPolicyRejection},
		{ErrPasswordReuse, ClassPolicyRejection},
		{ErrEmailInvalid, ClassPolicyRejection},
		{ErrTokenInvalid, ClassTokenState},
		{ErrTokenUsed, ClassTokenState},
		{ErrTokenExpired, ClassTokenState},
		{ErrAccountDisabled, ClassTokenState},
		{ErrRecoveryUnavailable, ClassInfrastructure},
		{ErrPasswordUpdateFailed, ClassInfrastructure},
		{ErrRecoveryRateLimited, ClassInfrastructure},
		{ErrRecoveryDisabled, ClassInfrastructure},
		{ErrEngineNotReady, ClassInfrastructure},
	}

	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestClassifyUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("%w: too short", ErrPasswordPolicy)
	if got := Classify(wrapped); got != ClassPolicyRejection {
		t.Fatalf("Classify(wrapped policy error) = %v, want ClassPolicyRejection", got)
	}

	joined := errors.Join(ErrPasswordUpdateFailed, errors.New("directory down"))
	if got := Classify(joined); got != ClassInfrastructure {
		t.Fatalf("Classify(joined update failure) = %v, want ClassInfrastructure", got)
	}
}

func TestContextCarriesRequestMetadata(t *testing.T) {
	ctx := WithClientIP(WithUserAgent(context.Background(), "test-agent"), "203.0.113.7")

	if got := clientIPFromContext(ctx); got != "203.0.113.7" {
		t.Fatalf("clientIPFromContext = %q", got)
	}
	if got := userAgentFromContext(ctx); got != "test-agent" {
		t.Fatalf("userAgentFromContext = %q", got)
	}
	if got := clientIPFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty IP on a bare context, got %q", got)
	}
}
