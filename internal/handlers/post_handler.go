package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hasinarivo/vetcare-api/internal/errs"
	"github.com/hasinarivo/vetcare-api/internal/models"
)

type createPostRequest struct {
	Content  string `json:"content" validate:"required,min=1"`
	ImageURL string `json:"imageUrl"`
}

func (h *Handler) CreatePost(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		failValidation(c, err.Error())
		return
	}

	post := models.Post{
		ID:        primitive.NewObjectID(),
		AuthorID:  userID,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		Likes:     []primitive.ObjectID{},
		CreatedAt: time.Now(),
	}
	if err := h.Posts.Insert(c.Request.Context(), &post); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Post published", post)
}

func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.Posts.Feed(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", posts)
}

func (h *Handler) UpdatePost(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	post, err := h.Posts.FindByID(c.Request.Context(), postID)
	if err != nil {
		fail(c, err)
		return
	}
	if post.AuthorID != userID {
		fail(c, errs.Authorization("you can only edit your own posts"))
		return
	}

	var req struct {
		Content  *string `json:"content,omitempty"`
		ImageURL *string `json:"imageUrl,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}

	fields := bson.M{}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	if req.ImageURL != nil {
		fields["imageUrl"] = *req.ImageURL
	}
	if len(fields) == 0 {
		failValidation(c, "No update fields provided")
		return
	}

	if err := h.Posts.Update(c.Request.Context(), postID, fields); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Post updated", nil)
}

func (h *Handler) DeletePost(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	post, err := h.Posts.FindByID(c.Request.Context(), postID)
	if err != nil {
		fail(c, err)
		return
	}
	if post.AuthorID != userID && role != models.RoleAdmin {
		fail(c, errs.Authorization("you can only delete your own posts"))
		return
	}

	if err := h.Posts.Delete(c.Request.Context(), postID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Post deleted", nil)
}

// LikePost toggles the caller's like on a post.
func (h *Handler) LikePost(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	liked, err := h.Posts.ToggleLike(c.Request.Context(), postID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"liked": liked})
}
