// Package games holds the point-earning mini games: trivia, the daily word
// and the monthly challenge set. All generated content comes from the text
// backend; Redis keeps the small amount of state they need (dedupe lists,
// daily words, one-award-per-day guards).
package games

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"volunteen/genai"
)

const (
	triviaRecentKey  = "trivia:recent"
	triviaRecentSize = 30
	triviaMaxTries   = 5
)

type TriviaQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

const triviaPrompt = `Generate a multiple-choice trivia question about volunteering, social impact, community service, different types of volunteering, community facts, environmental sustainability, or best volunteering practices.
Return the result as a JSON object with exactly these keys:
- "question": the trivia question (a string),
- "options": an array of exactly four options (strings),
- "correctAnswer": the exact text of the correct answer (one of the options).
Only return the JSON, nothing else.`

const triviaSystemMessage = "You are a trivia question generator specializing in volunteering and social impact."

type Service struct {
	AI  genai.Client
	Rdb *redis.Client
}

// GenerateTrivia asks the backend for a question, skipping any that matches
// the last 30 served. Gives up after a few rejected attempts and returns the
// last candidate rather than nothing.
func (s *Service) GenerateTrivia(ctx context.Context) (TriviaQuestion, error) {
	var last TriviaQuestion
	var have bool

	for attempt := 0; attempt < triviaMaxTries; attempt++ {
		raw, err := s.AI.Generate(triviaPrompt, triviaSystemMessage)
		if err != nil {
			return TriviaQuestion{}, err
		}

		var q TriviaQuestion
		if err := genai.ExtractJSONObject(raw, &q); err != nil {
			return TriviaQuestion{}, err
		}
		if err := validateTrivia(q); err != nil {
			return TriviaQuestion{}, err
		}
		last, have = q, true

		seen, err := s.recentlyServed(ctx, q.Question)
		if err == nil && seen {
			continue
		}
		s.rememberQuestion(ctx, q.Question)
		_ = s.RememberAnswer(ctx, q)
		return q, nil
	}

	if have {
		s.rememberQuestion(ctx, last.Question)
		_ = s.RememberAnswer(ctx, last)
		return last, nil
	}
	return TriviaQuestion{}, fmt.Errorf("could not generate a trivia question")
}

func validateTrivia(q TriviaQuestion) error {
	if q.Question == "" || len(q.Options) != 4 {
		return fmt.Errorf("malformed trivia question")
	}
	for _, o := range q.Options {
		if o == q.CorrectAnswer {
			return nil
		}
	}
	return fmt.Errorf("correct answer not among options")
}

func (s *Service) recentlyServed(ctx context.Context, question string) (bool, error) {
	recent, err := s.Rdb.LRange(ctx, triviaRecentKey, 0, triviaRecentSize-1).Result()
	if err != nil {
		return false, err
	}
	for _, r := range recent {
		if r == question {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) rememberQuestion(ctx context.Context, question string) {
	pipe := s.Rdb.Pipeline()
	pipe.LPush(ctx, triviaRecentKey, question)
	pipe.LTrim(ctx, triviaRecentKey, 0, triviaRecentSize-1)
	_, _ = pipe.Exec(ctx)
}

func dayTag(now time.Time) string { return now.Format("2006-01-02") }
