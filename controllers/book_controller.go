package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pageturners/bookswap_backend/database"
	"github.com/pageturners/bookswap_backend/models"
)

type CreateBookInput struct {
	Title       string `json:"title" binding:"required" example:"The Left Hand of Darkness"`
	Author      string `json:"author" example:"Ursula K. Le Guin"`
	Description string `json:"description" example:"A classic of science fiction"`
	ImageURL    string `json:"image_url" example:"https://example.com/cover.jpg"`
}

type UpdateBookInput struct {
	Title       string `json:"title" example:"The Left Hand of Darkness"`
	Author      string `json:"author" example:"Ursula K. Le Guin"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Available   *bool  `json:"available"`
}

// GetBooks godoc
// @Summary List books available for swapping
// @Description Returns all available book listings from other users
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of books"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/books [get]
func GetBooks(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var books []models.Book
	if err := database.DB.Preload("Owner").
		Where("available = ? AND owner_id <> ?", true, userID).
		Order("created_at DESC").
		Find(&books).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch books"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books})
}

// GetMyBooks godoc
// @Summary List the authenticated user's books
// @Description Returns all book listings owned by the authenticated user
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of books"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/books/mine [get]
func GetMyBooks(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var books []models.Book
	if err := database.DB.Where("owner_id = ?", userID).
		Order("created_at DESC").
		Find(&books).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch books"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books})
}

// GetBook godoc
// @Summary Get a single book
// @Description Returns one book listing with its owner
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} map[string]interface{} "Book details"
// @Failure 400 {object} map[string]string "Invalid book ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Book not found"
// @Router /api/books/{id} [get]
func GetBook(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	var book models.Book
	if err := database.DB.Preload("Owner").First(&book, bookID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"book": book})
}

// CreateBook godoc
// @Summary List a new book
// @Description Creates a book listing owned by the authenticated user
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param book body CreateBookInput true "Book Creation"
// @Success 201 {object} map[string]interface{} "Book created successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/books [post]
func CreateBook(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input CreateBookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book := models.Book{
		Title:       input.Title,
		Author:      input.Author,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		OwnerID:     userID,
		Available:   true,
	}

	if err := database.DB.Create(&book).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create book"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Book created successfully",
		"book":    book,
	})
}

// UpdateBook godoc
// @Summary Update a book
// @Description Updates a book listing owned by the authenticated user
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param book body UpdateBookInput true "Book Update"
// @Success 200 {object} map[string]interface{} "Book updated successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Book not found"
// @Router /api/books/{id} [put]
func UpdateBook(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own books"})
		return
	}

	var input UpdateBookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Title != "" {
		book.Title = input.Title
	}
	if input.Author != "" {
		book.Author = input.Author
	}
	if input.Description != "" {
		book.Description = input.Description
	}
	if input.ImageURL != "" {
		book.ImageURL = input.ImageURL
	}
	if input.Available != nil {
		book.Available = *input.Available
	}

	if err := database.DB.Save(&book).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update book"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Book updated successfully",
		"book":    book,
	})
}

// DeleteBook godoc
// @Summary Delete a book
// @Description Deletes a book listing owned by the authenticated user. Existing swap offers keep their snapshot of the book.
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} map[string]string "Book deleted successfully"
// @Failure 400 {object} map[string]string "Invalid book ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Book not found"
// @Router /api/books/{id} [delete]
func DeleteBook(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own books"})
		return
	}

	if err := database.DB.Delete(&book).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete book"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}
