package provider_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JaimeStill/image-lab/internal/provider"
	"google.golang.org/genai"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		rateLimited bool
		auth        bool
	}{
		{"status 429", genai.APIError{Code: 429}, true, false},
		{"resource exhausted", genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED"}, true, false},
		{"quota message", errors.New("Quota exceeded for requests per minute"), true, false},
		{"429 in message", fmt.Errorf("request failed: status 429"), true, false},
		{"status 403", genai.APIError{Code: 403, Message: "forbidden"}, false, true},
		{"permission denied", &genai.APIError{Code: 400, Status: "PERMISSION_DENIED"}, false, true},
		{"api key message", errors.New("API key not valid"), false, true},
		{"generic", errors.New("no image data found in response"), false, false},
		{"wrapped provider error", fmt.Errorf("generate: %w", &provider.Error{Code: 401}), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := provider.IsRateLimited(tt.err); got != tt.rateLimited {
				t.Errorf("IsRateLimited() = %v, want %v", got, tt.rateLimited)
			}
			if got := provider.IsAuth(tt.err); got != tt.auth {
				t.Errorf("IsAuth() = %v, want %v", got, tt.auth)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	cause := errors.New("dial tcp: timeout")

	tests := []struct {
		err  *provider.Error
		want string
	}{
		{&provider.Error{Message: "bad request"}, "bad request"},
		{&provider.Error{Cause: cause}, "dial tcp: timeout"},
		{&provider.Error{}, "provider error"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}

	if !errors.Is(&provider.Error{Cause: cause}, cause) {
		t.Error("Unwrap() should expose the cause")
	}
}

func TestIsChecks_Nil(t *testing.T) {
	if provider.IsRateLimited(nil) || provider.IsAuth(nil) {
		t.Error("nil error should not classify")
	}
}
