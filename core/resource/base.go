// Package resource implements the create / list / patch contract shared by every document type.
package resource

import (
	"time"
)

// Base is inlined in every document.
type Base struct {
	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func (b *Base) base() *Base { return b }

// Document is any type embedding Base.
type Document interface {
	base() *Base
}

// IDOf returns the id of a document.
func IDOf(doc Document) string {
	return doc.base().ID
}
