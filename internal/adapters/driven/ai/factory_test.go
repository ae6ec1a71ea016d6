package ai

import (
	"strings"
	"testing"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
)

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.LLMSettings
		wantModel   string
		wantErr     bool
		errContains string
	}{
		{
			name: "anthropic provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-haiku-4-5-20251001",
			},
			wantModel: "claude-haiku-4-5-20251001",
		},
		{
			name: "anthropic without API key returns error",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
			},
			wantErr:     true,
			errContains: "API key",
		},
		{
			name: "ollama provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "llama3.2",
			},
			wantModel: "llama3.2",
		},
		{
			name: "unknown provider returns error",
			settings: &domain.LLMSettings{
				Provider: "bedrock",
			},
			wantErr:     true,
			errContains: "unsupported LLM provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err, tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if svc.ModelName() != tt.wantModel {
				t.Errorf("model = %q, want %q", svc.ModelName(), tt.wantModel)
			}
			svc.Close()
		})
	}
}

func TestCreateAndValidateLLMService_Unconfigured(t *testing.T) {
	for _, settings := range []*domain.LLMSettings{
		nil,
		{},
		{Provider: domain.AIProviderAnthropic}, // missing key
	} {
		if _, err := CreateAndValidateLLMService(settings); err == nil {
			t.Errorf("expected error for settings %+v", settings)
		}
	}
}
