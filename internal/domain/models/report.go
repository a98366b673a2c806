package models

import "time"

// ExpiryReport summarizes one expiry sweep over the inventory.
type ExpiryReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Date        Date             `json:"date"`
	Total       int              `json:"total"`
	Counts      map[Severity]int `json:"counts"`
	Items       []ClassifiedFood `json:"items"`
}

// ClassifiedFood pairs a food with its severity at sweep time.
type ClassifiedFood struct {
	Food
	Severity Severity `json:"severity"`
}
