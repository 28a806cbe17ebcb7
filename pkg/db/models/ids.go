package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ensureID assigns a fresh id when the caller did not provide one. Ids are
// generated in Go so the same models work on Postgres and SQLite.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error         { ensureID(&u.ID); return nil }
func (s *Subcategory) BeforeCreate(*gorm.DB) error  { ensureID(&s.ID); return nil }
func (g *Gig) BeforeCreate(*gorm.DB) error          { ensureID(&g.ID); return nil }
func (m *GigMedia) BeforeCreate(*gorm.DB) error     { ensureID(&m.ID); return nil }
func (r *Review) BeforeCreate(*gorm.DB) error       { ensureID(&r.ID); return nil }
func (o *Offer) BeforeCreate(*gorm.DB) error        { ensureID(&o.ID); return nil }
func (f *UserFavorite) BeforeCreate(*gorm.DB) error { ensureID(&f.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error        { ensureID(&o.ID); return nil }
func (l *Language) BeforeCreate(*gorm.DB) error     { ensureID(&l.ID); return nil }
func (c *Country) BeforeCreate(*gorm.DB) error      { ensureID(&c.ID); return nil }
