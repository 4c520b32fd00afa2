package routes

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"volunteen/impact"
	"volunteen/mailer"
	"volunteen/models"
	"volunteen/utils"
)

/* --------------------- Auth --------------------- */

// POST /signup
func (d *deps) signup(c *gin.Context) {
	var req struct {
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	u := models.User{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := d.Users.Create(&u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save user."})
		return
	}

	go func() {
		subject, body := mailer.Verification(u.Email, d.PublicURL, u.VerifyToken)
		if err := d.Mail.Send(u.Email, subject, body, ""); err != nil {
			log.Printf("verification mail to %s failed: %v", u.Email, err)
		}
	}()

	c.JSON(http.StatusCreated, gin.H{"message": "user created successfully, check your inbox to verify"})
}

// GET /verify?token=...
func (d *deps) verifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing verification token."})
		return
	}
	if err := d.Users.Verify(token); err != nil {
		fail(c, err, "Could not verify email.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified. You can log in now."})
}

// POST /login
func (d *deps) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	user, err := d.Users.ValidateCredentials(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Could not authenticate user."})
		return
	}
	if !user.Verified {
		c.JSON(http.StatusForbidden, gin.H{"message": "Please verify your email first."})
		return
	}

	token, err := utils.GenerateToken(user.Email, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not authenticate user."})
		return
	}

	streak, bonus, err := d.Users.TouchLoginStreak(user.ID, time.Now())
	if err != nil {
		log.Printf("login streak update for %s failed: %v", user.ID, err)
		streak = user.LoginStreak
	}
	if bonus {
		d.Hub.Broadcast("points_awarded", gin.H{"userId": user.ID, "delta": models.PointsStreakDay})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Login successful!",
		"token":       token,
		"loginStreak": streak,
		"streakBonus": bonus,
	})
}

/* -------------------- Profile -------------------- */

// GET /user
func (d *deps) getProfile(c *gin.Context) {
	u, err := d.Users.GetByID(c.GetString("userId"))
	if err != nil {
		fail(c, err, "Could not fetch profile.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "medal": impact.MedalTier(u.VolunteerHours)})
}

// PUT /user
func (d *deps) updateProfile(c *gin.Context) {
	var req struct {
		Description  string `json:"description"`
		Organization string `json:"organization"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	userID := c.GetString("userId")
	u, err := d.Users.GetByID(userID)
	if err != nil {
		fail(c, err, "Could not fetch profile.")
		return
	}

	if err := d.Users.UpdateProfile(userID, req.Description, req.Organization, u.PhotoURL); err != nil {
		fail(c, err, "Could not update profile.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated."})
}

// POST /user/photo (multipart field "photo")
func (d *deps) uploadPhoto(c *gin.Context) {
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing photo upload."})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, 10<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read upload."})
		return
	}

	url, err := d.Blobs.Save(data, header.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unsupported file type."})
		return
	}

	userID := c.GetString("userId")
	u, err := d.Users.GetByID(userID)
	if err != nil {
		fail(c, err, "Could not fetch profile.")
		return
	}
	if err := d.Users.UpdateProfile(userID, u.Description, u.Organization, url); err != nil {
		fail(c, err, "Could not update profile.")
		return
	}
	if u.PhotoURL != "" && u.PhotoURL != url {
		if err := d.Blobs.Delete(u.PhotoURL); err != nil {
			log.Printf("old photo cleanup failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo updated.", "photoURL": url})
}

// POST /user/hours
// Positive values credit hours, negative ones correct them. The balance never
// drops below zero.
func (d *deps) adjustHours(c *gin.Context) {
	var req struct {
		Hours float64 `json:"hours" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	userID := c.GetString("userId")
	var total float64
	var err error
	if req.Hours >= 0 {
		total, err = d.Users.AddHours(userID, req.Hours)
	} else {
		total, err = d.Users.RemoveHours(userID, -req.Hours)
	}
	if err != nil {
		fail(c, err, "Could not update hours.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalVolunteerHours": total})
}

// GET /user/impact
func (d *deps) userImpact(c *gin.Context) {
	u, err := d.Users.GetByID(c.GetString("userId"))
	if err != nil {
		fail(c, err, "Could not fetch profile.")
		return
	}
	c.JSON(http.StatusOK, impact.Calculate(u.VolunteerHours))
}
