package routes

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"volunteen/blob"
	"volunteen/chat"
	"volunteen/games"
	"volunteen/mailer"
	"volunteen/middlewares"
	"volunteen/models"
	"volunteen/utils"
	"volunteen/ws"
)

// Deps carries everything the handlers need; main builds one and hands it in.
type Deps struct {
	Users      models.UserRepository
	Events     models.EventRepository
	Posts      models.PostRepository
	Challenges models.ChallengeRepository

	Games     *games.Service
	Assistant *chat.Assistant
	Mail      mailer.Sender
	Blobs     blob.Store
	Hub       *ws.Hub
	Inv       *utils.CacheInvalidator

	// PublicURL is the externally reachable base URL, used in verification
	// mails.
	PublicURL string
}

type deps struct{ Deps }

func RegisterRoutes(server *gin.Engine, rdb *redis.Client, in Deps) {
	d := &deps{in}

	// wire chat commands through the same join/create paths as the endpoints
	if d.Assistant != nil {
		d.Assistant.JoinEvent = d.joinForUser
		d.Assistant.CreateEvent = d.createForUser
	}

	// ===== ① global per-IP rate limit =====
	globalLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     20,
		Burst:   40,
		IdleTTL: 3 * time.Minute,
	})
	server.Use(globalLimiter.Middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}))

	// ===== ② stricter limit on credential endpoints =====
	authLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     0.5,
		Burst:   2,
		IdleTTL: 10 * time.Minute,
	})
	server.POST("/signup",
		authLimiter.Middleware(func(c *gin.Context) string { return "signup:" + c.ClientIP() }),
		d.signup,
	)
	server.POST("/login",
		authLimiter.Middleware(func(c *gin.Context) string { return "login:" + c.ClientIP() }),
		d.login,
	)
	server.GET("/verify", d.verifyEmail)

	// ===== ③ protected group: authenticate, then per-user limit + daily quota =====
	auth := server.Group("/")
	auth.Use(middlewares.Authenticate)

	userLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     5,
		Burst:   10,
		IdleTTL: 10 * time.Minute,
	})
	auth.Use(userLimiter.Middleware(func(c *gin.Context) string {
		return "u:" + c.GetString("userId")
	}))

	auth.Use(middlewares.Quota(rdb, middlewares.QuotaRule{
		Limit:  2000,
		Window: 24 * time.Hour,
		KeyFn: func(c *gin.Context) string {
			uid := c.GetString("userId")
			if uid == "" {
				return ""
			}
			return fmt.Sprintf("quota:user:%s:day", uid)
		},
	}))

	// public endpoints: global IP limit + response cache only
	server.GET("/events", d.getEvents)
	server.GET("/events/:id", d.getEvent)
	server.GET("/leaderboard", d.leaderboard)
	server.GET("/posts", d.getPosts)
	server.GET("/ws", gin.WrapH(d.Hub))
	server.POST("/chat", middlewares.MaybeAuthenticate, d.chatMessage)

	// events
	auth.POST("/events", d.createEvent)
	auth.PUT("/events/:id", d.updateEvent)
	auth.DELETE("/events/:id", d.deleteEvent)
	auth.POST("/events/:id/flyer", d.uploadFlyer)
	auth.POST("/events/:id/join", d.joinEvent)
	auth.DELETE("/events/:id/join", d.cancelJoin)
	auth.POST("/events/:id/checkin", d.checkIn)
	auth.POST("/events/:id/attendance", d.markAttendance)
	auth.GET("/events/:id/participants", d.listParticipants)
	auth.GET("/myplans", d.myPlans)
	auth.GET("/myevents", d.myEvents)
	auth.GET("/recommendations", d.recommendations)

	// profile
	auth.GET("/user", d.getProfile)
	auth.PUT("/user", d.updateProfile)
	auth.POST("/user/photo", d.uploadPhoto)
	auth.POST("/user/hours", d.adjustHours)
	auth.GET("/user/impact", d.userImpact)

	// community
	auth.POST("/posts", d.createPost)
	auth.PUT("/posts/:id", d.updatePost)
	auth.DELETE("/posts/:id", d.deletePost)
	auth.POST("/posts/:id/like", d.likePost)

	// games
	auth.GET("/games/trivia", d.getTrivia)
	auth.POST("/games/trivia/answer", d.answerTrivia)
	auth.GET("/games/word", d.getDailyWord)
	auth.POST("/games/word/guess", d.guessDailyWord)
	auth.GET("/games/challenges", d.monthlyChallenges)
}

// statusFor maps repository errors onto HTTP statuses. Anything unknown is a
// plain 500.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrEventGone), errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrEventFull), errors.Is(err, models.ErrNotJoined), errors.Is(err, models.ErrAlreadyMarked):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, models.ErrConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"message": msg})
		return
	}
	c.JSON(status, gin.H{"message": err.Error()})
}
