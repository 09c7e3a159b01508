package rewriting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultFeedbackLimit is the number of feedback events retained.
const DefaultFeedbackLimit = 200

// Feedback actions
const (
	ActionAccepted = "accepted"
	ActionRejected = "rejected"
)

var intentLabels = map[types.RewriteIntent]string{
	types.IntentEmphasizeSkills: "emphasizing skills",
	types.IntentMoreTechnical:   "more technical detail",
	types.IntentMoreConcise:     "being concise",
	types.IntentConservative:    "minimal, conservative edits",
}

// Feedback is one reviewer reaction to a candidate.
type Feedback struct {
	Action          string              `json:"action"`
	Intent          types.RewriteIntent `json:"rewrite_intent,omitempty"`
	Length          int                 `json:"length"`
	Rating          int                 `json:"rating,omitempty"`
	Comment         string              `json:"comment,omitempty"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	Timestamp       time.Time           `json:"timestamp,omitzero"`
}

// NewFeedback builds a feedback event for a candidate. rating is 1-5, or 0
// when not given.
func NewFeedback(accepted bool, c types.BulletCandidate, rating int, comment string) Feedback {
	f := Feedback{
		Action:  ActionRejected,
		Intent:  c.RewriteIntent,
		Length:  len([]rune(c.Text)),
		Comment: strings.TrimSpace(comment),
	}
	if accepted {
		f.Action = ActionAccepted
	}
	if rating >= 1 && rating <= 5 {
		f.Rating = rating
	}
	return f
}

// FeedbackStore keeps the most recent feedback events and summarizes them
// into a preference note for candidate prompts. It is safe for concurrent use.
type FeedbackStore struct {
	mu      sync.Mutex
	entries []Feedback
	limit   int
	path    string
}

// NewFeedbackStore creates an in-memory store.
func NewFeedbackStore() *FeedbackStore {
	return &FeedbackStore{limit: DefaultFeedbackLimit}
}

// OpenFeedbackStore loads a store persisted at path. A missing file yields
// an empty store; every Record rewrites the file.
func OpenFeedbackStore(path string) (*FeedbackStore, error) {
	s := &FeedbackStore{limit: DefaultFeedbackLimit, path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback file %s: %w", path, err)
	}
	var doc struct {
		Entries []Feedback `json:"entries"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse feedback file %s: %w", path, err)
	}
	s.entries = tail(doc.Entries, s.limit)
	return s, nil
}

// Record stores a feedback event, dropping the oldest beyond the limit.
func (s *FeedbackStore) Record(f Feedback) error {
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = tail(append(s.entries, f), s.limit)
	return s.save()
}

// Entries returns a copy of the retained events, oldest first.
func (s *FeedbackStore) Entries() []Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Feedback(nil), s.entries...)
}

func (s *FeedbackStore) save() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(map[string]any{"entries": s.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode feedback: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create feedback directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write feedback file %s: %w", s.path, err)
	}
	return nil
}

// PreferenceNote summarizes accepted candidates: typical length, favored
// intent, average rating and words repeated across comments. It is empty
// until something has been accepted.
func (s *FeedbackStore) PreferenceNote() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accepted []Feedback
	for _, e := range s.entries {
		if e.Action == ActionAccepted {
			accepted = append(accepted, e)
		}
	}
	if len(accepted) == 0 {
		return ""
	}

	totalLen := 0
	var order []types.RewriteIntent
	counts := make(map[types.RewriteIntent]int)
	var ratings []int
	for _, e := range accepted {
		totalLen += e.Length
		intent := e.Intent
		if intent == "" {
			intent = types.IntentEmphasizeSkills
		}
		if counts[intent] == 0 {
			order = append(order, intent)
		}
		counts[intent]++
		if e.Rating > 0 {
			ratings = append(ratings, e.Rating)
		}
	}

	notes := []string{
		fmt.Sprintf("User tends to accept bullets around %d characters long.", totalLen/len(accepted)),
	}

	top := order[0]
	for _, intent := range order[1:] {
		if counts[intent] > counts[top] {
			top = intent
		}
	}
	label, ok := intentLabels[top]
	if !ok {
		label = string(top)
	}
	notes = append(notes, fmt.Sprintf("User often prefers bullets focused on %s.", label))

	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		notes = append(notes, fmt.Sprintf("User typically rates accepted bullets %.1f out of 5 stars.", float64(sum)/float64(len(ratings))))
	}

	if themes := commentThemes(accepted); len(themes) > 0 {
		notes = append(notes, fmt.Sprintf("User feedback often mentions: %s.", strings.Join(themes, ", ")))
	}
	return strings.Join(notes, " ")
}

// commentThemes returns up to two words longer than four letters that occur
// at least twice across comments, most frequent first.
func commentThemes(entries []Feedback) []string {
	type wordCount struct {
		word  string
		count int
	}
	var words []wordCount
	index := make(map[string]int)
	for _, e := range entries {
		for _, w := range strings.Fields(strings.ToLower(e.Comment)) {
			if len([]rune(w)) <= 4 {
				continue
			}
			if i, ok := index[w]; ok {
				words[i].count++
				continue
			}
			index[w] = len(words)
			words = append(words, wordCount{word: w, count: 1})
		}
	}
	sort.SliceStable(words, func(i, j int) bool { return words[i].count > words[j].count })

	var themes []string
	for _, wc := range words {
		if wc.count < 2 || len(themes) == 2 {
			break
		}
		themes = append(themes, wc.word)
	}
	return themes
}

func tail(entries []Feedback, n int) []Feedback {
	if len(entries) > n {
		return append([]Feedback(nil), entries[len(entries)-n:]...)
	}
	return entries
}
