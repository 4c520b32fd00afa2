package routes

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"volunteen/games"
	"volunteen/models"
)

/* --------------------- Trivia --------------------- */

// GET /games/trivia
func (d *deps) getTrivia(c *gin.Context) {
	q, err := d.Games.GenerateTrivia(c)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "Could not generate a trivia question right now."})
		return
	}
	// the correct answer stays server-side until graded
	c.JSON(http.StatusOK, gin.H{"question": q.Question, "options": q.Options})
}

// POST /games/trivia/answer
func (d *deps) answerTrivia(c *gin.Context) {
	var req struct {
		Question string `json:"question" binding:"required"`
		Answer   string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	correct, err := d.Games.CheckAnswer(c, req.Question, req.Answer)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Question not found or expired."})
		return
	}

	awarded := 0
	if correct {
		awarded = models.PointsTriviaCorrect
		if err := d.Users.ApplyPointsDelta(c.GetString("userId"), awarded, time.Now()); err != nil {
			log.Printf("trivia points award failed: %v", err)
			awarded = 0
		}
	}
	c.JSON(http.StatusOK, gin.H{"correct": correct, "pointsAwarded": awarded})
}

/* ------------------- Daily word ------------------- */

// GET /games/word
func (d *deps) getDailyWord(c *gin.Context) {
	// the word itself never leaves the server
	if _, err := d.Games.DailyWord(c, time.Now()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "Could not prepare today's word."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wordLength": games.WordLength,
		"maxGuesses": games.MaxGuesses,
		"date":       models.DateKey(time.Now()),
	})
}

// POST /games/word/guess
func (d *deps) guessDailyWord(c *gin.Context) {
	var req struct {
		Guess string `json:"guess" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	now := time.Now()
	answer, err := d.Games.DailyWord(c, now)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "Could not fetch today's word."})
		return
	}

	states, err := games.EvaluateGuess(answer, strings.TrimSpace(req.Guess))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	solved := true
	for _, s := range states {
		if s != games.LetterCorrect {
			solved = false
			break
		}
	}

	awarded := 0
	if solved {
		first, err := d.Games.AwardDailySolve(c, c.GetString("userId"), now)
		if err != nil {
			log.Printf("daily word award check failed: %v", err)
		} else if first {
			awarded = models.PointsDailyWordSolve
			if err := d.Users.ApplyPointsDelta(c.GetString("userId"), awarded, now); err != nil {
				log.Printf("daily word points award failed: %v", err)
				awarded = 0
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"states": states, "solved": solved, "pointsAwarded": awarded})
}

/* ---------------- Monthly challenges ---------------- */

// GET /games/challenges
func (d *deps) monthlyChallenges(c *gin.Context) {
	set, err := d.Games.MonthlyChallenges(d.Challenges, time.Now())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "Could not fetch this month's challenges."})
		return
	}
	c.JSON(http.StatusOK, set)
}

/* --------------------- Chatbot --------------------- */

// POST /chat
func (d *deps) chatMessage(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	reply, err := d.Assistant.Respond(req.Message, c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "The assistant is unavailable right now."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": reply})
}
