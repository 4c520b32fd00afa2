package games

import (
	"errors"
	"time"

	"volunteen/genai"
	"volunteen/models"
)

const challengesPrompt = `Generate 5 creative volunteering challenges focused on community service, environmental protection, and education.
For each challenge include:
1. A catchy title
2. A short description (50-70 words)
3. Estimated time commitment
4. Difficulty level (Easy/Medium/Hard)
5. Potential impact metric

Format your answer as a JSON array where each element is an object with the keys: title, description, time, difficulty, impact.`

const challengesSystemMessage = "Generate volunteering challenges"

// MonthlyChallenges returns the challenge set for now's month, generating and
// persisting one if the month has none yet.
func (s *Service) MonthlyChallenges(repo models.ChallengeRepository, now time.Time) (models.ChallengeSet, error) {
	monthKey := models.MonthKey(now)

	set, err := repo.GetMonth(monthKey)
	if err == nil {
		return set, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.ChallengeSet{}, err
	}

	raw, err := s.AI.Generate(challengesPrompt, challengesSystemMessage)
	if err != nil {
		return models.ChallengeSet{}, err
	}
	var challenges []models.Challenge
	if err := genai.ExtractJSONArray(raw, &challenges); err != nil {
		return models.ChallengeSet{}, err
	}
	if len(challenges) > 5 {
		challenges = challenges[:5]
	}

	set = models.ChallengeSet{
		MonthKey:    monthKey,
		GeneratedAt: now.UnixMilli(),
		Challenges:  challenges,
	}
	if err := repo.SetMonth(set); err != nil {
		return models.ChallengeSet{}, err
	}
	return set, nil
}
