package games

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	WordLength = 5
	MaxGuesses = 6

	// used when the backend fails or returns something unusable
	fallbackWord = "heart"
)

// Letter feedback for one guess position.
const (
	LetterCorrect = "correct" // right letter, right position
	LetterPresent = "present" // right letter, wrong position
	LetterAbsent  = "absent"
)

const wordPrompt = "Generate a single, common 5-letter word related to volunteering and community service."
const wordSystemMessage = "Return only a single 5-letter word."

// DailyWord returns the word for now's calendar day, generating and pinning
// one in Redis on first call. Concurrent first calls race on SetNX, so every
// caller ends up with the same word.
func (s *Service) DailyWord(ctx context.Context, now time.Time) (string, error) {
	key := "word:daily:" + dayTag(now)

	if w, err := s.Rdb.Get(ctx, key).Result(); err == nil && w != "" {
		return w, nil
	}

	word := fallbackWord
	if raw, err := s.AI.Generate(wordPrompt, wordSystemMessage); err == nil {
		if cleaned := sanitizeWord(raw); len(cleaned) == WordLength {
			word = cleaned
		}
	}

	ok, err := s.Rdb.SetNX(ctx, key, word, 48*time.Hour).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		// someone else pinned a word first; serve theirs
		return s.Rdb.Get(ctx, key).Result()
	}
	return word, nil
}

func sanitizeWord(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EvaluateGuess scores guess against answer, two passes: exact positions
// first, then remaining letters elsewhere, consuming each answer letter at
// most once so duplicates are not over-reported.
func EvaluateGuess(answer, guess string) ([]string, error) {
	answer = strings.ToLower(answer)
	guess = strings.ToLower(guess)
	if len(guess) != len(answer) {
		return nil, fmt.Errorf("guess must be %d letters", len(answer))
	}

	states := make([]string, len(answer))
	remaining := []byte(answer)

	for i := range guess {
		if guess[i] == answer[i] {
			states[i] = LetterCorrect
			remaining[i] = 0
		}
	}
	for i := range guess {
		if states[i] == LetterCorrect {
			continue
		}
		states[i] = LetterAbsent
		for j := range remaining {
			if remaining[j] == guess[i] {
				states[i] = LetterPresent
				remaining[j] = 0
				break
			}
		}
	}
	return states, nil
}

// AwardDailySolve reports whether userID's correct solve is the first of the
// calendar day, flipping the guard atomically so racing solves award once.
func (s *Service) AwardDailySolve(ctx context.Context, userID string, now time.Time) (bool, error) {
	key := fmt.Sprintf("word:awarded:%s:%s", userID, dayTag(now))
	return s.Rdb.SetNX(ctx, key, "1", 48*time.Hour).Result()
}
