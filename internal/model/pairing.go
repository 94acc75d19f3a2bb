package model

import (
	"time"
)

const (
	PairingStatusActive = "active"
	PairingStatusEnded  = "ended"
)

type Pairing struct {
	ID        string    `db:"id" json:"id"`
	UserA     string    `db:"user_a" json:"userA"`
	UserB     string    `db:"user_b" json:"userB"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// PartnerOf returns the other member of the pairing, or "" if userID is not a member.
func (p *Pairing) PartnerOf(userID string) string {
	switch userID {
	case p.UserA:
		return p.UserB
	case p.UserB:
		return p.UserA
	}
	return ""
}

func (p *Pairing) Has(userID string) bool {
	return p.PartnerOf(userID) != ""
}
