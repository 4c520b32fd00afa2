package routes

import (
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"volunteen/models"
)

/* --------------------- Posts --------------------- */

// GET /posts
func (d *deps) getPosts(c *gin.Context) {
	posts, err := d.Posts.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch posts."})
		return
	}
	c.JSON(http.StatusOK, posts)
}

// POST /posts (multipart: "content" text field, optional "media" file)
func (d *deps) createPost(c *gin.Context) {
	userID := c.GetString("userId")

	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Post content is required."})
		return
	}

	u, err := d.Users.GetByID(userID)
	if err != nil {
		fail(c, err, "Could not fetch profile.")
		return
	}

	post := models.Post{
		ID:         uuid.NewString(),
		Content:    content,
		AuthorName: strings.TrimSpace(u.FirstName + " " + u.LastName),
		UserID:     userID,
		Timestamp:  time.Now().UnixMilli(),
		LikedBy:    map[string]bool{},
	}

	if file, header, err := c.Request.FormFile("media"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, 50<<20))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read upload."})
			return
		}
		url, err := d.Blobs.Save(data, header.Filename)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Unsupported file type."})
			return
		}
		post.MediaURL = url
		post.MediaType = mediaTypeOf(header.Filename)
	}

	if err := d.Posts.Create(&post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create post."})
		return
	}

	d.Inv.PurgePosts(c)
	d.Hub.Broadcast("post_created", post)
	c.JSON(http.StatusCreated, gin.H{"message": "Post created!", "post": post})
}

// PUT /posts/:id
func (d *deps) updatePost(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	if err := d.Posts.UpdateContent(c.Param("id"), c.GetString("userId"), req.Content); err != nil {
		fail(c, err, "Could not update post.")
		return
	}
	d.Inv.PurgePosts(c)
	c.JSON(http.StatusOK, gin.H{"message": "Post updated."})
}

// DELETE /posts/:id
func (d *deps) deletePost(c *gin.Context) {
	id := c.Param("id")
	userID := c.GetString("userId")

	post, err := d.Posts.GetByID(id)
	if err != nil {
		fail(c, err, "Could not fetch post.")
		return
	}

	if err := d.Posts.Delete(id, userID); err != nil {
		fail(c, err, "Could not delete post.")
		return
	}

	if post.MediaURL != "" {
		if err := d.Blobs.Delete(post.MediaURL); err != nil {
			log.Printf("post media cleanup failed: %v", err)
		}
	}
	d.Inv.PurgePosts(c)
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted."})
}

// POST /posts/:id/like
func (d *deps) likePost(c *gin.Context) {
	post, err := d.Posts.ToggleLike(c.Param("id"), c.GetString("userId"))
	if err != nil {
		fail(c, err, "Could not update like.")
		return
	}

	d.Inv.PurgePosts(c)
	d.Hub.Broadcast("post_liked", gin.H{"postId": post.ID, "likes": post.Likes})
	c.JSON(http.StatusOK, gin.H{"likes": post.Likes})
}

/* ------------------ Leaderboard ------------------ */

// GET /leaderboard
func (d *deps) leaderboard(c *gin.Context) {
	entries, err := d.Users.Leaderboard()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch leaderboard."})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func mediaTypeOf(name string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(name), ".mp4"), strings.HasSuffix(strings.ToLower(name), ".webm"):
		return "video"
	default:
		return "image"
	}
}
