package config

import (
	"errors"
	"testing"

	"github.com/MrWong99/inquiro/pkg/provider/llm"
	mockllm "github.com/MrWong99/inquiro/pkg/provider/llm/mock"
)

func TestRegistry_CreateLLM(t *testing.T) {
	reg := NewRegistry()
	want := &mockllm.Provider{}
	reg.RegisterLLM("mock", func(ProviderConfig) (llm.Provider, error) {
		return want, nil
	})

	got, err := reg.CreateLLM(ProviderConfig{Name: "mock"})
	if err != nil {
		t.Fatalf("CreateLLM() error = %v", err)
	}
	if got != want {
		t.Error("CreateLLM() did not return the factory's provider")
	}
}

func TestRegistry_UnregisteredProvider(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.CreateLLM(ProviderConfig{Name: "missing"})
	if !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("CreateLLM() error = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	reg := NewRegistry()
	first := &mockllm.Provider{}
	second := &mockllm.Provider{}
	reg.RegisterLLM("mock", func(ProviderConfig) (llm.Provider, error) { return first, nil })
	reg.RegisterLLM("mock", func(ProviderConfig) (llm.Provider, error) { return second, nil })

	got, err := reg.CreateLLM(ProviderConfig{Name: "mock"})
	if err != nil {
		t.Fatalf("CreateLLM() error = %v", err)
	}
	if got != second {
		t.Error("CreateLLM() did not use the most recent registration")
	}
}
