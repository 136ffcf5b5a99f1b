package handlers

import "github.com/orykevin/chef-rizzranker/internal/models"

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

// Type aliases so swag can resolve models in annotations.
type Character = models.Character
type Message = models.Message
type LeaderboardEntry = models.LeaderboardEntry
