package entry

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mydiary/internal/app/client"
)

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestCheckAttempt(t *testing.T) {
	two := 2

	tests := []struct {
		name    string
		res     client.AttemptResult
		wantErr string
	}{
		{name: "success", res: client.AttemptResult{Status: client.StatusSuccess}},
		{name: "not protected", res: client.AttemptResult{Status: client.StatusNotProtected}},
		{name: "invalid", res: client.AttemptResult{Status: client.StatusInvalidPassword, RemainingAttempts: &two}, wantErr: "осталось попыток: 2"},
		{name: "locked", res: client.AttemptResult{Status: client.StatusLocked, RetryAfterSeconds: 90}, wantErr: "1m30s"},
		{name: "exceeded", res: client.AttemptResult{Status: client.StatusAttemptsExceeded, RetryAfterSeconds: 10800, SessionTerminated: true}, wantErr: "auth login"},
		{name: "password required", res: client.AttemptResult{Status: client.StatusPasswordRequired}, wantErr: "закрыта"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkAttempt(&tt.res)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseDay(t *testing.T) {
	got, err := parseDay("", false)
	require.NoError(t, err)
	assert.Nil(t, got)

	from, err := parseDay("2025-03-01", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local), *from)

	to, err := parseDay("2025-03-01", true)
	require.NoError(t, err)
	assert.Equal(t, 1, to.Day())
	assert.Equal(t, 23, to.Hour())

	_, err = parseDay("01.03.2025", false)
	assert.Error(t, err)
}

func TestEditedInput(t *testing.T) {
	mood := 5
	cur := &client.EntryView{ID: 1, Title: "Old", Body: "text", Tags: []string{"a"}, Mood: &mood}

	cmd := &cobra.Command{}
	cmd.Flags().StringP("title", "t", "", "")
	cmd.Flags().StringP("body", "b", "", "")
	cmd.Flags().StringSlice("tags", nil, "")
	cmd.Flags().StringSlice("attach", nil, "")
	cmd.Flags().IntP("mood", "m", 0, "")
	require.NoError(t, cmd.Flags().Parse([]string{"--title", "New", "--mood", "0"}))

	in, err := editedInput(cmd, cur)
	require.NoError(t, err)

	assert.Equal(t, "New", in.Title)
	assert.Equal(t, "text", in.Body)
	assert.Equal(t, []string{"a"}, in.Tags)
	assert.Nil(t, in.Mood)
}
