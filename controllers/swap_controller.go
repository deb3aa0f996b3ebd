package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pageturners/bookswap_backend/database"
	"github.com/pageturners/bookswap_backend/models"
	"github.com/pageturners/bookswap_backend/swap"
)

// Package-level engine and view registry, wired from main. The engine is the
// single mutation path for offers; controllers never write offer rows
// directly.
var (
	swapEngine *swap.Engine
	swapViews  *swap.Views
)

// SetupSwap injects the lifecycle engine and view registry.
func SetupSwap(engine *swap.Engine, views *swap.Views) {
	swapEngine = engine
	swapViews = views
}

type CreateSwapInput struct {
	BookID  uint   `json:"book_id" binding:"required" example:"1"`
	Message string `json:"message" example:"Would love to trade for this one!"`
}

// CreateSwap godoc
// @Summary Request a book swap
// @Description Opens a pending swap offer from the authenticated user to the book's owner
// @Tags swaps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param swap body CreateSwapInput true "Swap Creation"
// @Success 201 {object} map[string]interface{} "Swap offer created"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Book not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/swaps [post]
func CreateSwap(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input CreateSwapInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var book models.Book
	if err := database.DB.Preload("Owner").First(&book, input.BookID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	if !book.Available {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book is not available for swapping"})
		return
	}

	var sender models.User
	if err := database.DB.First(&sender, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	offer, err := swapEngine.CreateOffer(
		swap.Participant{ID: sender.ID, Name: sender.Name, Email: sender.Email},
		swap.Participant{ID: book.Owner.ID, Name: book.Owner.Name, Email: book.Owner.Email},
		swap.BookSnapshot{ID: book.ID, Title: book.Title, ImageURL: book.ImageURL},
		input.Message,
	)
	if err != nil {
		if errors.Is(err, swap.ErrInvalidParticipants) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot request a swap for your own book"})
			return
		}
		respondSwapError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Swap offer sent successfully",
		"offer":   offer,
	})
}

// GetSentSwaps godoc
// @Summary Get swap offers sent by the authenticated user
// @Description Returns the user's outbox of swap offers
// @Tags swaps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of sent offers"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /api/swaps/sent [get]
func GetSentSwaps(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	offers, err := swapViews.Sent(userID).Offers()
	if err != nil {
		respondSwapError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// GetReceivedSwaps godoc
// @Summary Get swap offers received by the authenticated user
// @Description Returns the user's inbox of swap offers
// @Tags swaps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of received offers"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /api/swaps/received [get]
func GetReceivedSwaps(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	offers, err := swapViews.Received(userID).Offers()
	if err != nil {
		respondSwapError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// GetSwap godoc
// @Summary Get a single swap offer
// @Description Returns one swap offer; only its participants may view it
// @Tags swaps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 200 {object} map[string]interface{} "Offer details"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Offer not found"
// @Router /api/swaps/{id} [get]
func GetSwap(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	offer, err := swapEngine.GetOffer(c.Param("id"))
	if err != nil {
		respondSwapError(c, err)
		return
	}

	if offer.SenderID != userID && offer.RecipientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not part of this swap"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"offer": offer})
}

// GetBookSwaps godoc
// @Summary Get pending swap offers for a book
// @Description Returns the open offers on one of the authenticated user's books
// @Tags swaps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} map[string]interface{} "List of pending offers"
// @Failure 400 {object} map[string]string "Invalid book ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Book not found"
// @Router /api/books/{id}/offers [get]
func GetBookSwaps(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	bookID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	var book models.Book
	if err := database.DB.First(&book, bookID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	if book.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view offers on your own books"})
		return
	}

	offers, err := swapViews.PendingForBook(uint(bookID)).Offers()
	if err != nil {
		respondSwapError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// AcceptSwap godoc
// @Summary Accept a swap offer
// @Description Accepts a pending swap offer; only the recipient may accept. Other pending offers on the book are left untouched and can be rejected separately.
// @Tags swaps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 200 {object} map[string]string "Offer accepted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Offer not found"
// @Failure 409 {object} map[string]string "Offer no longer available"
// @Router /api/swaps/{id}/accept [post]
func AcceptSwap(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	offerID := c.Param("id")

	offer, err := swapEngine.GetOffer(offerID)
	if err != nil {
		respondSwapError(c, err)
		return
	}
	if offer.RecipientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the book owner can accept this offer"})
		return
	}

	if err := swapEngine.AcceptOffer(offerID); err != nil {
		respondSwapError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Swap offer accepted successfully"})
}

// RejectSwap godoc
// @Summary Reject a swap offer
// @Description Rejects a pending swap offer; only the recipient may reject
// @Tags swaps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 200 {object} map[string]string "Offer rejected"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Offer not found"
// @Failure 409 {object} map[string]string "Offer no longer available"
// @Router /api/swaps/{id}/reject [post]
func RejectSwap(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	offerID := c.Param("id")

	offer, err := swapEngine.GetOffer(offerID)
	if err != nil {
		respondSwapError(c, err)
		return
	}
	if offer.RecipientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the book owner can reject this offer"})
		return
	}

	if err := swapEngine.RejectOffer(offerID); err != nil {
		respondSwapError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Swap offer rejected successfully"})
}

// CancelSwap godoc
// @Summary Cancel a swap offer
// @Description Cancels a pending swap offer; only the sender may cancel
// @Tags swaps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 200 {object} map[string]string "Offer cancelled"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Offer not found"
// @Failure 409 {object} map[string]string "Offer no longer available"
// @Router /api/swaps/{id}/cancel [post]
func CancelSwap(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	offerID := c.Param("id")

	offer, err := swapEngine.GetOffer(offerID)
	if err != nil {
		respondSwapError(c, err)
		return
	}
	if offer.SenderID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the sender can cancel this offer"})
		return
	}

	if err := swapEngine.CancelOffer(offerID); err != nil {
		respondSwapError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Swap offer cancelled successfully"})
}

// respondSwapError maps engine errors onto HTTP statuses.
func respondSwapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, swap.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Swap offer not found"})
	case errors.Is(err, swap.ErrInvalidParticipants):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, swap.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Offer is no longer available"})
	case errors.Is(err, swap.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Offer was just updated, please refresh"})
	case errors.Is(err, swap.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable, please try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
