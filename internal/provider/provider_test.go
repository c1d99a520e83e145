package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name      string
	available bool
	genErr    error
	genOut    string
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if s.genErr != nil {
		return "", s.genErr
	}
	return s.genOut, nil
}
func (s *stubProvider) Explain(ctx context.Context, command string) (string, error)         { return "", nil }
func (s *stubProvider) Diagnose(ctx context.Context, command, output string) (string, error) { return "", nil }
func (s *stubProvider) Available(ctx context.Context) bool                                   { return s.available }

func TestManagerFallsBackOnError(t *testing.T) {
	failing := &stubProvider{name: "a", genErr: errors.New("boom")}
	working := &stubProvider{name: "b", genOut: "hello"}
	m := NewManager(failing, working)

	out, err := m.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "hello", out)
}

func TestManagerReturnsErrorWhenAllFail(t *testing.T) {
	failing := &stubProvider{name: "a", genErr: errors.New("boom")}
	m := NewManager(failing)

	_, err := m.Generate(context.Background(), "prompt")
	require.Error(t, err)
	var notAvail *NoProviderAvailableError
	require.ErrorAs(t, err, &notAvail)
}

func TestFirstAvailable(t *testing.T) {
	down := &stubProvider{name: "a", available: false}
	up := &stubProvider{name: "b", available: true}
	m := NewManager(down, up)

	p := m.FirstAvailable(context.Background())
	require.NotNil(t, p)
	require.Equal(t, "b", p.Name())
}
