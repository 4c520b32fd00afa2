package routes

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"volunteen/mailer"
	"volunteen/models"
)

/* -------------------- Events -------------------- */

// GET /events
func (d *deps) getEvents(c *gin.Context) {
	events, err := d.Events.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch events. Try again later."})
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /events/:id
func (d *deps) getEvent(c *gin.Context) {
	event, err := d.Events.GetByID(c.Param("id"))
	if err != nil {
		fail(c, err, "Could not fetch event. Try again later.")
		return
	}
	c.JSON(http.StatusOK, event)
}

// createForUser is the shared creation path for the endpoint and the chatbot
// command. Awards the organizer points and purges caches.
func (d *deps) createForUser(event *models.Event, userID string) error {
	event.UserID = userID
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CreatedAt = time.Now().UnixMilli()
	if event.Participants == nil {
		event.Participants = map[string]models.Participation{}
	}

	if err := d.Events.Create(event); err != nil {
		return err
	}

	if err := d.Users.ApplyPointsDelta(userID, models.PointsEventCreated, time.Now()); err != nil {
		log.Printf("points award after event create failed: %v", err)
	}
	d.purgeEvent(context.Background(), event.ID)
	d.Hub.Broadcast("event_created", event)
	return nil
}

// POST /events
func (d *deps) createEvent(c *gin.Context) {
	var event models.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	if err := d.createForUser(&event, c.GetString("userId")); err != nil {
		fail(c, err, "Could not create event. Try again later.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "event created!", "event": event})
}

// PUT /events/:id
func (d *deps) updateEvent(c *gin.Context) {
	id := c.Param("id")
	userID := c.GetString("userId")

	old, err := d.Events.GetByID(id)
	if err != nil {
		fail(c, err, "Could not fetch the event. Try again later.")
		return
	}
	if old.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to update event."})
		return
	}

	var incoming models.Event
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}
	incoming.ID = id
	incoming.UserID = old.UserID

	if err := d.Events.Update(&incoming); err != nil {
		fail(c, err, "Could not update event. Try again later.")
		return
	}

	d.purgeEvent(c, id)
	c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully!"})
}

// DELETE /events/:id
func (d *deps) deleteEvent(c *gin.Context) {
	id := c.Param("id")
	userID := c.GetString("userId")

	ev, err := d.Events.GetByID(id)
	if err != nil {
		fail(c, err, "Could not fetch the event. Try again later.")
		return
	}
	if ev.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete event."})
		return
	}

	if err := d.Events.Delete(id); err != nil {
		fail(c, err, "Could not delete the event.")
		return
	}

	if ev.FlyerURL != "" {
		if err := d.Blobs.Delete(ev.FlyerURL); err != nil {
			log.Printf("flyer cleanup failed: %v", err)
		}
	}
	if err := d.Users.ApplyPointsDelta(userID, models.PointsEventDeleted, time.Now()); err != nil {
		log.Printf("points reversal after event delete failed: %v", err)
	}
	d.purgeEvent(c, id)
	d.Hub.Broadcast("event_deleted", gin.H{"id": id})
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully!"})
}

// POST /events/:id/flyer (multipart field "flyer")
func (d *deps) uploadFlyer(c *gin.Context) {
	id := c.Param("id")

	ev, err := d.Events.GetByID(id)
	if err != nil {
		fail(c, err, "Could not fetch the event.")
		return
	}
	if ev.UserID != c.GetString("userId") {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to update event."})
		return
	}

	file, header, err := c.Request.FormFile("flyer")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing flyer upload."})
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

	old := ev.FlyerURL
	ev.FlyerURL = url
	if err := d.Events.Update(&ev); err != nil {
		fail(c, err, "Could not update event.")
		return
	}
	if old != "" && old != url {
		if err := d.Blobs.Delete(old); err != nil {
			log.Printf("old flyer cleanup failed: %v", err)
		}
	}

	d.purgeEvent(c, id)
	c.JSON(http.StatusOK, gin.H{"message": "Flyer updated.", "flyerURL": url})
}

/* ----------------- Roster & capacity ----------------- */

// joinForUser is the shared registration path for the endpoint and the
// chatbot command: one conditional update on the event, then the
// confirmation mail and cache purge.
func (d *deps) joinForUser(eventID, userID string) error {
	u, err := d.Users.GetByID(userID)
	if err != nil {
		return err
	}

	event, err := d.Events.Join(eventID, models.Participation{
		UserID:    userID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	})
	if err != nil {
		return err
	}

	go func() {
		subject, body, reminderDate := mailer.JoinConfirmation(event)
		if err := d.Mail.Send(u.Email, subject, body, reminderDate); err != nil {
			log.Printf("confirmation mail to %s failed: %v", u.Email, err)
		}
	}()

	d.purgeEvent(context.Background(), eventID)
	d.Hub.Broadcast("event_joined", gin.H{"eventId": eventID, "spotsRemaining": event.SpotsRemaining})
	return nil
}

// POST /events/:id/join
func (d *deps) joinEvent(c *gin.Context) {
	if err := d.joinForUser(c.Param("id"), c.GetString("userId")); err != nil {
		fail(c, err, "Could not register for event.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Registered!"})
}

// DELETE /events/:id/join
func (d *deps) cancelJoin(c *gin.Context) {
	eventID := c.Param("id")
	event, err := d.Events.Cancel(eventID, c.GetString("userId"))
	if err != nil {
		fail(c, err, "Could not cancel registration.")
		return
	}

	d.purgeEvent(c, eventID)
	d.Hub.Broadcast("event_left", gin.H{"eventId": eventID, "spotsRemaining": event.SpotsRemaining})
	c.JSON(http.StatusOK, gin.H{"message": "Cancelled!"})
}

// POST /events/:id/checkin
func (d *deps) checkIn(c *gin.Context) {
	if err := d.Events.CheckIn(c.Param("id"), c.GetString("userId")); err != nil {
		fail(c, err, "Could not check in.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checked in!"})
}

// POST /events/:id/attendance
// Callers mark their own participation. A "finished" mark is one-time and
// triggers the completion rewards.
func (d *deps) markAttendance(c *gin.Context) {
	eventID := c.Param("id")
	userID := c.GetString("userId")

	var req struct {
		Status string  `json:"status" binding:"required"`
		Hours  float64 `json:"hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}
	if req.Status != models.StatusFinished && req.Status != models.StatusDidNotAttend {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Status must be finished or did_not_attend."})
		return
	}

	now := time.Now()
	p, err := d.Events.MarkAttendance(eventID, userID, req.Status, now)
	if err != nil {
		fail(c, err, "Could not mark attendance.")
		return
	}

	if req.Status == models.StatusFinished {
		if err := d.Users.ApplyPointsDelta(userID, models.PointsEventFinished, now); err != nil {
			log.Printf("points award after completion failed: %v", err)
		}
		if err := d.Users.IncrCompletedEvents(userID, p.MonthKey, 1); err != nil {
			log.Printf("completed-events counter failed: %v", err)
		}
		if req.Hours > 0 {
			if _, err := d.Users.AddHours(userID, req.Hours); err != nil {
				log.Printf("hour credit after completion failed: %v", err)
			}
		}
		d.Hub.Broadcast("points_awarded", gin.H{"userId": userID, "delta": models.PointsEventFinished})
	}

	d.Inv.PurgeLeaderboard(c)
	c.JSON(http.StatusOK, gin.H{"message": "Attendance recorded.", "participation": p})
}

// GET /events/:id/participants
func (d *deps) listParticipants(c *gin.Context) {
	event, err := d.Events.GetByID(c.Param("id"))
	if err != nil {
		fail(c, err, "Could not fetch the event.")
		return
	}
	if event.UserID != c.GetString("userId") {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only the organizer can view participants."})
		return
	}

	participants := make([]models.Participation, 0, len(event.Participants))
	for _, p := range event.Participants {
		participants = append(participants, p)
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants, "spotsRemaining": event.SpotsRemaining})
}

/* ------------------ Personal views ------------------ */

// GET /myplans
func (d *deps) myPlans(c *gin.Context) {
	events, err := d.Events.ListJoined(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch your plans."})
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /myevents
func (d *deps) myEvents(c *gin.Context) {
	events, err := d.Events.ListByOrganizer(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch your events."})
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /recommendations
func (d *deps) recommendations(c *gin.Context) {
	userID := c.GetString("userId")
	all, err := d.Events.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch events."})
		return
	}
	history, err := d.Events.ListJoined(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch your history."})
		return
	}

	recs := models.Recommend(all, history, userID, models.DateKey(time.Now()), 6)
	c.JSON(http.StatusOK, recs)
}

// purgeEvent drops the list and item cache entries after a write.
func (d *deps) purgeEvent(ctx context.Context, id string) {
	if d.Inv == nil {
		return
	}
	d.Inv.PurgeEventsList(ctx)
	d.Inv.PurgeEventItem(ctx, id)
}
