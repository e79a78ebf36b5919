package drives

import (
	"context"
	"errors"
	"testing"

	"github.com/GriffinCanCode/filedeck/internal/infrastructure/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockEnumerator struct {
	mock.Mock
}

func (m *mockEnumerator) Mounts(ctx context.Context) ([]MountInfo, error) {
	args := m.Called(ctx)
	mounts, _ := args.Get(0).([]MountInfo)
	return mounts, args.Error(1)
}

func TestGuardedPassesThrough(t *testing.T) {
	inner := new(mockEnumerator)
	want := []MountInfo{{Path: "/media/usb", Removable: true, Transport: "usb"}}
	inner.On("Mounts", mock.Anything).Return(want, nil).Once()

	var results []string
	g := NewGuarded(inner, zap.NewNop())
	g.OnResult = func(r string) { results = append(results, r) }

	got, err := g.Mounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"ok"}, results)
	inner.AssertExpectations(t)
}

func TestGuardedOpensAfterFailures(t *testing.T) {
	inner := new(mockEnumerator)
	inner.On("Mounts", mock.Anything).Return(nil, ErrToolMissing).Times(3)

	var results []string
	g := NewGuarded(inner, zap.NewNop())
	g.OnResult = func(r string) { results = append(results, r) }

	for i := 0; i < 3; i++ {
		_, err := g.Mounts(context.Background())
		assert.ErrorIs(t, err, ErrToolMissing)
	}
	assert.Equal(t, resilience.StateOpen, g.State())

	_, err := g.Mounts(context.Background())
	assert.True(t, errors.Is(err, resilience.ErrCircuitOpen))
	assert.Equal(t, []string{"error", "error", "error", "open"}, results)

	// The tool is not invoked while the breaker is open.
	inner.AssertNumberOfCalls(t, "Mounts", 3)
}

func TestStaticReturnsCopy(t *testing.T) {
	s := Static{{Path: "/mnt/a"}}

	got, err := s.Mounts(context.Background())
	require.NoError(t, err)
	got[0].Path = "/changed"

	again, _ := s.Mounts(context.Background())
	assert.Equal(t, "/mnt/a", again[0].Path)
}

func TestEnumeratorFunc(t *testing.T) {
	var e Enumerator = EnumeratorFunc(func(context.Context) ([]MountInfo, error) {
		return []MountInfo{{Path: "/mnt/x"}}, nil
	})

	got, err := e.Mounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/mnt/x", got[0].Path)
}
