package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// ProductEvent is a raw purchase record as captured by the browser extension
// or imported from a statement.
type ProductEvent struct {
	Timestamp    time.Time
	ID           string
	UserID       string
	SessionID    string
	Platform     string // E-commerce site, e.g. "Amazon"
	ProductURL   string
	ProductTitle string // Raw product name as shown by the site
	Hash         string
	Price        float64
}

// GenerateHash creates a unique hash for duplicate detection.
func (e *ProductEvent) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%.2f:%s:%s",
		e.UserID,
		e.Timestamp.UTC().Format(time.RFC3339),
		e.Price,
		e.Platform,
		e.ProductTitle)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
