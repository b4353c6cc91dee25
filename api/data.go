package main

import "time"

type account struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Email        string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"size:150" json:"name"`
	PasswordHash []byte    `gorm:"not null" json:"-"`
}

type note struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Subject   string    `gorm:"size:200;not null" json:"subject"`
	Content   string    `gorm:"type:text" json:"content"`
	AccountID int       `gorm:"not null;index" json:"account_id"`
	Account   *account  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type task struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `gorm:"size:500;not null" json:"description"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	AccountID   int       `gorm:"not null;index" json:"account_id"`
	Account     *account  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// ownerID lets the guard treat notes and tasks alike.
func (n *note) ownerID() int { return n.AccountID }
func (t *task) ownerID() int { return t.AccountID }
