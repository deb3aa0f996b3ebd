package websocket

import (
	"encoding/json"
	"log"

	"github.com/pageturners/bookswap_backend/database"
	"github.com/pageturners/bookswap_backend/models"
)

// MessagePayload represents the structure of a chat message payload
type MessagePayload struct {
	ConversationID uint   `json:"conversation_id"`
	Content        string `json:"content"`
}

// SaveMessageToDB saves a message to the database and returns the saved message
func SaveMessageToDB(userID uint, payload MessagePayload) (models.Message, error) {
	// Create message
	message := models.Message{
		Content:        payload.Content,
		ConversationID: payload.ConversationID,
		UserID:         userID,
	}

	// Save to database
	if err := database.DB.Create(&message).Error; err != nil {
		return message, err
	}

	// Load user data for the message
	if err := database.DB.Preload("User").First(&message, message.ID).Error; err != nil {
		log.Printf("Error loading user data for message: %v", err)
	}

	return message, nil
}

// HandleIncomingMessage processes an incoming WebSocket message
func HandleIncomingMessage(client *Client, messageBytes []byte) {
	var msg Message
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	switch msg.Type {
	case "join_conversation":
		if id, ok := msg.Payload.(string); ok {
			conversationID := parseID(id)
			if !participantOf(client.userID, conversationID) {
				log.Printf("User %d attempted to join conversation %d without access",
					client.userID, conversationID)
				return
			}
			client.joinConversation(conversationID)
		}
	case "leave_conversation":
		if id, ok := msg.Payload.(string); ok {
			client.leaveConversation(parseID(id))
		}
	case "message":
		// Extract message payload
		payloadBytes, err := json.Marshal(msg.Payload)
		if err != nil {
			log.Printf("Error marshaling payload: %v", err)
			return
		}

		var payload MessagePayload
		if err := json.Unmarshal(payloadBytes, &payload); err != nil {
			log.Printf("Error unmarshaling message payload: %v", err)
			return
		}

		// Check if user has joined the conversation
		if !client.inConversation(payload.ConversationID) {
			log.Printf("User %d attempted to send message to conversation %d without joining",
				client.userID, payload.ConversationID)
			return
		}

		// Save message to database
		savedMessage, err := SaveMessageToDB(client.userID, payload)
		if err != nil {
			log.Printf("Error saving message to database: %v", err)
			return
		}

		// Broadcast the saved message to the conversation
		responseMsg := Message{
			Type:    "message",
			Payload: savedMessage,
		}

		responseBytes, err := json.Marshal(responseMsg)
		if err != nil {
			log.Printf("Error marshaling response message: %v", err)
			return
		}

		client.hub.broadcastToConversation(payload.ConversationID, responseBytes)
	case "watch_book":
		// Clients viewing a book's offer list ask for its pending-list hints
		if id, ok := msg.Payload.(string); ok {
			client.watchBook(parseID(id))
		}
	case "unwatch_book":
		if id, ok := msg.Payload.(string); ok {
			client.unwatchBook(parseID(id))
		}
	}
}

// participantOf checks membership in a conversation
func participantOf(userID, conversationID uint) bool {
	var conversation models.Conversation
	if err := database.DB.First(&conversation, conversationID).Error; err != nil {
		return false
	}
	return conversation.HasParticipant(userID)
}
