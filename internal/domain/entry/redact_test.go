package entry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mydiary/internal/domain/protection"
)

func intPtr(v int) *int { return &v }

func sampleEntries() []Entry {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return []Entry{
		{ID: 1, UserID: 7, Title: "Monday", Body: "open", Tags: []string{"work"}, Mood: intPtr(6), CreatedAt: created},
		{ID: 2, UserID: 7, Title: "Secret", Body: "hidden", Tags: []string{"private"}, Attachments: []string{"a.png"},
			Mood: intPtr(2), CreatedAt: created.Add(time.Hour), IsProtected: true, PasswordHash: "$2a$hash", FailedAttempts: 1},
		{ID: 3, UserID: 7, Title: "Tuesday", Body: "open too", Mood: intPtr(8), CreatedAt: created.Add(2 * time.Hour)},
	}
}

func TestRedact_List(t *testing.T) {
	views := RedactAll(sampleEntries(), nil)

	assert.Len(t, views, 3)
	assert.Equal(t, "Monday", views[0].Title)
	assert.Equal(t, "Tuesday", views[2].Title)
	assert.False(t, views[0].Locked)

	secret := views[1]
	assert.Equal(t, 2, secret.ID)
	assert.Equal(t, PlaceholderTitle, secret.Title)
	assert.Equal(t, PlaceholderBody, secret.Body)
	assert.Empty(t, secret.Tags)
	assert.NotNil(t, secret.Tags)
	assert.Empty(t, secret.Attachments)
	assert.Nil(t, secret.Mood)
	assert.True(t, secret.IsProtected)
	assert.True(t, secret.Locked)
}

func TestRedact_Verified(t *testing.T) {
	e := sampleEntries()[1]

	v := Redact(e, protection.NewVerifiedSet(2))

	assert.Equal(t, "Secret", v.Title)
	assert.Equal(t, "hidden", v.Body)
	assert.Equal(t, []string{"private"}, v.Tags)
	assert.Equal(t, 2, *v.Mood)
	assert.True(t, v.IsProtected)
	assert.False(t, v.Locked)
}

func TestRedact_VerifiedOtherEntry(t *testing.T) {
	e := sampleEntries()[1]

	v := Redact(e, protection.NewVerifiedSet(1, 3))

	assert.True(t, v.Locked)
	assert.Equal(t, PlaceholderTitle, v.Title)
}

func TestRedactView_Idempotent(t *testing.T) {
	v := Project(sampleEntries()[1])

	once := RedactView(v)
	twice := RedactView(once)

	assert.Equal(t, once, twice)
}

func TestProject_DoesNotAlias(t *testing.T) {
	e := sampleEntries()[0]

	v := Project(e)
	v.Tags[0] = "changed"
	*v.Mood = 1

	assert.Equal(t, "work", e.Tags[0])
	assert.Equal(t, 6, *e.Mood)
}

func TestComputeStats(t *testing.T) {
	st := computeStats(RedactAll(sampleEntries(), nil))

	assert.Equal(t, 3, st.TotalEntries)
	assert.Equal(t, 1, st.ProtectedEntries)
	assert.Equal(t, 2, st.MoodSamples)
	if assert.NotNil(t, st.AverageMood) {
		assert.InDelta(t, 7.0, *st.AverageMood, 0.0001)
	}
	assert.Equal(t, map[string]int{"work": 1}, st.Tags)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), *st.FirstEntryAt)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), *st.LastEntryAt)
}

func TestComputeStats_Empty(t *testing.T) {
	st := computeStats(nil)

	assert.Equal(t, 0, st.TotalEntries)
	assert.Nil(t, st.AverageMood)
	assert.Nil(t, st.FirstEntryAt)
	assert.NotNil(t, st.Tags)
}

func TestInput_Validate(t *testing.T) {
	long := make([]rune, MaxTitleLen+1)
	for i := range long {
		long[i] = 'я'
	}

	tests := []struct {
		name    string
		input   Input
		wantErr bool
	}{
		{name: "valid", input: Input{Title: "Day", Mood: intPtr(5)}},
		{name: "no mood", input: Input{Title: "Day"}},
		{name: "empty title", input: Input{Title: "   "}, wantErr: true},
		{name: "long title", input: Input{Title: string(long)}, wantErr: true},
		{name: "mood too low", input: Input{Title: "Day", Mood: intPtr(0)}, wantErr: true},
		{name: "mood too high", input: Input{Title: "Day", Mood: intPtr(11)}, wantErr: true},
		{name: "blank tag", input: Input{Title: "Day", Tags: []string{"ok", " "}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidData)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInput_ApplyNormalizesTags(t *testing.T) {
	var e Entry
	Input{Title: "  Day ", Tags: []string{"Work", "work ", "Home"}}.apply(&e)

	assert.Equal(t, "Day", e.Title)
	assert.Equal(t, []string{"work", "home"}, e.Tags)
}

func TestPage_Normalize(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultPageLimit}, Page{}.Normalize())
	assert.Equal(t, Page{Limit: MaxPageLimit, Offset: 0}, Page{Limit: 1000, Offset: -5}.Normalize())
	assert.Equal(t, Page{Limit: 5, Offset: 10}, Page{Limit: 5, Offset: 10}.Normalize())
}

func TestResult_Err(t *testing.T) {
	assert.NoError(t, Result{}.Err())
	assert.ErrorIs(t, Result{PasswordRequired: true}.Err(), ErrPasswordRequired)
}
