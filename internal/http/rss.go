package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/filmrec/filmrec/internal/database/users"
	"github.com/filmrec/filmrec/internal/importers"
)

// RSSController handles on-demand Letterboxd feed syncs and feed
// connection management.
type RSSController struct {
	rss      *importers.RSSImporter
	userRepo *users.Repository
}

func NewRSSController(rss *importers.RSSImporter, userRepo *users.Repository) *RSSController {
	return &RSSController{
		rss:      rss,
		userRepo: userRepo,
	}
}

type rssSyncRequest struct {
	// Profile is a Letterboxd username, profile URL or feed URL.
	// Optional when the user already has a connected feed.
	Profile string `json:"profile"`
}

// Sync pulls the user's Letterboxd feed and applies its entries. The
// profile reference in the body wins over the stored feed URL.
func (ctrl *RSSController) Sync(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req rssSyncRequest
	// A missing body is fine, the stored feed may cover it.
	_ = c.ShouldBindJSON(&req)

	reference := req.Profile
	if reference == "" {
		user, err := ctrl.userRepo.GetUserByID(userID)
		if err != nil {
			respondInternalError(c, err, "rss sync")
			return
		}
		reference = user.LetterboxdFeedURL
	}

	if reference == "" {
		respondBadRequest(c, "no profile provided and no feed connected")
		return
	}

	counters, err := ctrl.rss.Sync(c.Request.Context(), userID, reference)
	if err != nil {
		switch {
		case errors.Is(err, importers.ErrInvalidFeedInput):
			respondBadRequest(c, "invalid letterboxd profile reference")
		case errors.Is(err, importers.ErrFeedUnavailable):
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "could not read letterboxd feed"})
		default:
			respondInternalError(c, err, "rss sync")
		}
		return
	}

	if err := ctrl.userRepo.TouchLastSync(userID, time.Now()); err != nil {
		respondInternalError(c, err, "rss sync")
		return
	}

	c.JSON(http.StatusOK, counters)
}

type connectRequest struct {
	Profile string `json:"profile" binding:"required"`
}

type connectResponse struct {
	FeedURL string `json:"feed_url"`
}

// Connect stores the user's Letterboxd feed URL for scheduled syncs.
// The profile reference is resolved and validated but not fetched.
func (ctrl *RSSController) Connect(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "profile is required")
		return
	}

	feedURL, err := ctrl.rss.ResolveFeedURL(req.Profile)
	if err != nil {
		respondBadRequest(c, "invalid letterboxd profile reference")
		return
	}

	if err := ctrl.userRepo.SetLetterboxdFeed(userID, feedURL); err != nil {
		respondInternalError(c, err, "connect feed")
		return
	}

	c.JSON(http.StatusOK, connectResponse{FeedURL: feedURL})
}

// Disconnect clears the user's stored feed URL.
func (ctrl *RSSController) Disconnect(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := ctrl.userRepo.SetLetterboxdFeed(userID, ""); err != nil {
		respondInternalError(c, err, "disconnect feed")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "feed disconnected"})
}
