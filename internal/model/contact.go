package model

import "time"

// Contact is an address-book entry owned by a single user. Everything but
// the name is optional.
type Contact struct {
	ID        uint64    // contacts.id
	OwnerID   uint64    // contacts.owner_id
	Name      string    // contacts.name
	Email     *string   // contacts.email (nullable)
	Phone     *string   // contacts.phone (nullable)
	Company   *string   // contacts.company (nullable)
	Title     *string   // contacts.title (nullable)
	CreatedAt time.Time // contacts.created_at
}
