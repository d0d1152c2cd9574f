package settings_test

import (
	"context"
	"testing"

	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/service/settings"
	"github.com/phrazzld/kanji-trainer/internal/store"
	"github.com/phrazzld/kanji-trainer/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, active ...string) settings.Service {
	t.Helper()
	slots := testutils.NewMemorySlots(t, store.Defaults{ActiveQuestionIDs: active})
	return settings.NewService(slots, testutils.NewTestContent(t).Bank, testutils.DiscardLogger())
}

func TestActive_DefaultsUntilWritten(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newService(t, "一", "二", "山")

	ids, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"一", "二", "山"}, ids)

	ids, err = svc.Set(ctx, []string{"海", "一", "海"})
	require.NoError(t, err)
	assert.Equal(t, []string{"海", "一"}, ids)

	_, err = svc.Set(ctx, []string{"犬"})
	assert.ErrorIs(t, err, domain.ErrUnknownQuestion)

	ids, err = svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"海", "一"}, ids)
}

func TestToggleQuestion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newService(t, "一")

	ids, err := svc.ToggleQuestion(ctx, "山")
	require.NoError(t, err)
	assert.Equal(t, []string{"一", "山"}, ids)

	ids, err = svc.ToggleQuestion(ctx, "一")
	require.NoError(t, err)
	assert.Equal(t, []string{"山"}, ids)

	_, err = svc.ToggleQuestion(ctx, "犬")
	assert.ErrorIs(t, err, domain.ErrUnknownQuestion)
}

func TestToggleGrade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name         string
		active       []string
		grade        int
		want         []string
		wantSelected bool
	}{
		{name: "partial grade fills in", active: []string{"二", "海"}, grade: 1, want: []string{"二", "海", "一", "山"}, wantSelected: true},
		{name: "full grade clears", active: []string{"一", "海", "二", "山"}, grade: 1, want: []string{"海"}, wantSelected: false},
		{name: "empty set selects grade", active: []string{}, grade: 2, want: []string{"海"}, wantSelected: true},
		{name: "unknown grade is a no-op", active: []string{"一"}, grade: 6, want: []string{"一"}, wantSelected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newService(t, tt.active...)

			ids, err := svc.ToggleGrade(ctx, tt.grade)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)

			selected, err := svc.IsGradeSelected(ctx, tt.grade)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSelected, selected)
		})
	}
}

func TestGrades(t *testing.T) {
	t.Parallel()
	svc := newService(t, "海")

	views, err := svc.Grades(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 1, views[0].Grade)
	assert.False(t, views[0].Selected)
	assert.Len(t, views[0].Questions, 3)
	assert.Equal(t, 2, views[1].Grade)
	assert.True(t, views[1].Selected)
	assert.True(t, views[1].Questions[0].Active)
}
