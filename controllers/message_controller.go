package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pageturners/bookswap_backend/database"
	"github.com/pageturners/bookswap_backend/models"
	"github.com/pageturners/bookswap_backend/websocket"
)

type CreateMessageInput struct {
	Content        string `json:"content" binding:"required" example:"When can we meet for the exchange?"`
	ConversationID uint   `json:"conversation_id" binding:"required" example:"1"`
}

// GetConversations godoc
// @Summary Get the authenticated user's conversations
// @Description Returns the chat threads opened by accepted swaps, newest activity first
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of conversations"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/conversations [get]
func GetConversations(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var conversations []models.Conversation
	if err := database.DB.Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Preload("Sender").Preload("Recipient").
		Order("updated_at DESC").
		Find(&conversations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetMessages godoc
// @Summary Get all messages in a conversation
// @Description Returns the message history for one of the user's conversations
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conversation_id query int true "Conversation ID"
// @Success 200 {object} map[string]interface{} "List of messages"
// @Failure 400 {object} map[string]string "Invalid conversation ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/messages [get]
func GetMessages(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	conversationID, err := strconv.ParseUint(c.Query("conversation_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	// Check if user is part of the conversation
	var conversation models.Conversation
	if err := database.DB.First(&conversation, conversationID).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this conversation"})
		return
	}
	if !conversation.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this conversation"})
		return
	}

	var messages []models.Message
	if err := database.DB.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Preload("User").
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// CreateMessage godoc
// @Summary Send a message
// @Description Creates a new message in one of the user's conversations
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param message body CreateMessageInput true "Message Creation"
// @Success 201 {object} map[string]interface{} "Message sent successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/messages [post]
func CreateMessage(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input CreateMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Check if user is part of the conversation
	var conversation models.Conversation
	if err := database.DB.First(&conversation, input.ConversationID).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this conversation"})
		return
	}
	if !conversation.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this conversation"})
		return
	}

	// Create message
	message := models.Message{
		Content:        input.Content,
		ConversationID: input.ConversationID,
		UserID:         userID,
	}

	if err := database.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create message"})
		return
	}

	// Load user data for the message
	database.DB.Preload("User").First(&message, message.ID)

	// Broadcast message to the conversation
	websocket.BroadcastToConversation(input.ConversationID, "message", message)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"data":    message,
	})
}
