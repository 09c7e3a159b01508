package rewriting

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestFeedbackStore_PreferenceNote(t *testing.T) {
	store := NewFeedbackStore()
	assert.Empty(t, store.PreferenceNote())

	entries := []Feedback{
		{Action: ActionAccepted, Intent: types.IntentMoreConcise, Length: 100, Rating: 4, Comment: "great concise wording"},
		{Action: ActionAccepted, Intent: types.IntentMoreConcise, Length: 120, Rating: 5, Comment: "concise and great"},
		{Action: ActionAccepted, Intent: types.IntentConservative, Length: 80},
		{Action: ActionRejected, Intent: types.IntentMoreTechnical, Length: 149, Rating: 1, Comment: "terrible terrible"},
	}
	for _, e := range entries {
		require.NoError(t, store.Record(e))
	}

	assert.Equal(t,
		"User tends to accept bullets around 100 characters long. "+
			"User often prefers bullets focused on being concise. "+
			"User typically rates accepted bullets 4.5 out of 5 stars. "+
			"User feedback often mentions: great, concise.",
		store.PreferenceNote())
}

func TestFeedbackStore_OnlyRejections(t *testing.T) {
	store := NewFeedbackStore()
	require.NoError(t, store.Record(Feedback{Action: ActionRejected, Length: 50}))
	assert.Empty(t, store.PreferenceNote())
}

func TestFeedbackStore_DefaultIntentAndTies(t *testing.T) {
	store := NewFeedbackStore()
	require.NoError(t, store.Record(Feedback{Action: ActionAccepted, Length: 60}))
	require.NoError(t, store.Record(Feedback{Action: ActionAccepted, Intent: types.IntentConservative, Length: 60}))

	note := store.PreferenceNote()
	assert.Contains(t, note, "emphasizing skills", "first intent wins a tie")
	assert.NotContains(t, note, "stars")
	assert.NotContains(t, note, "mentions")
}

func TestFeedbackStore_KeepsLastEntries(t *testing.T) {
	store := NewFeedbackStore()
	for i := 0; i < DefaultFeedbackLimit+5; i++ {
		require.NoError(t, store.Record(Feedback{Action: ActionRejected, Length: i}))
	}

	entries := store.Entries()
	require.Len(t, entries, DefaultFeedbackLimit)
	assert.Equal(t, 5, entries[0].Length)
	assert.Equal(t, DefaultFeedbackLimit+4, entries[len(entries)-1].Length)
}

func TestFeedbackStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "feedback.json")

	store, err := OpenFeedbackStore(path)
	require.NoError(t, err)
	assert.Empty(t, store.Entries())
	require.NoError(t, store.Record(Feedback{Action: ActionAccepted, Intent: types.IntentMoreTechnical, Length: 110}))

	reopened, err := OpenFeedbackStore(path)
	require.NoError(t, err)
	require.Len(t, reopened.Entries(), 1)
	assert.Contains(t, reopened.PreferenceNote(), "more technical detail")
}

func TestNewFeedback(t *testing.T) {
	c := types.BulletCandidate{Text: "Shipped Go services", RewriteIntent: types.IntentMoreConcise}

	f := NewFeedback(true, c, 7, "  nice  ")
	assert.Equal(t, ActionAccepted, f.Action)
	assert.Equal(t, 19, f.Length)
	assert.Equal(t, 0, f.Rating, "out-of-range rating dropped")
	assert.Equal(t, "nice", f.Comment)
	assert.Equal(t, types.IntentMoreConcise, f.Intent)

	assert.Equal(t, ActionRejected, NewFeedback(false, c, 3, "").Action)
}
