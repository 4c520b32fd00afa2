package games

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const answerTTL = 24 * time.Hour

func answerKey(question string) string {
	sum := sha1.Sum([]byte(question))
	return "trivia:answer:" + hex.EncodeToString(sum[:])
}

// RememberAnswer pins the correct answer server-side so graded submissions
// cannot be forged by the client.
func (s *Service) RememberAnswer(ctx context.Context, q TriviaQuestion) error {
	return s.Rdb.Set(ctx, answerKey(q.Question), q.CorrectAnswer, answerTTL).Err()
}

// CheckAnswer grades a submission against the pinned answer. Unknown or
// expired questions are an error, not a wrong answer.
func (s *Service) CheckAnswer(ctx context.Context, question, answer string) (bool, error) {
	correct, err := s.Rdb.Get(ctx, answerKey(question)).Result()
	if err != nil {
		return false, fmt.Errorf("question not found or expired")
	}
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(correct)), nil
}
