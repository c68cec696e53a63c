package entities

import (
	"time"
)

// UserRole is the two-variant role checked at the authorization boundary.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// Valid reports whether the role is one of the two known values.
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleUser
}

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Username     string   `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string   `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string   `gorm:"size:255" json:"-"`
	Role         UserRole `gorm:"size:10;default:'user';check:role IN ('admin','user')" json:"role"`

	// Collections are owned exclusively by one user and are removed with it.
	Collections []Collection `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

type Book struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Title           string `gorm:"index;size:512" json:"title"`
	PublicationYear int    `json:"publication_year,omitempty"`
	OpenLibraryID   string `gorm:"index;size:32" json:"open_library_id,omitempty"`
	CoverID         *int64 `json:"cover_id,omitempty"`

	Authors    []Author   `gorm:"many2many:book_authors;" json:"authors,omitempty"`
	Categories []Category `gorm:"many2many:book_categories;" json:"categories,omitempty"`
	Languages  []Language `gorm:"many2many:book_languages;" json:"languages,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Author struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:256" json:"name"`

	// ImageURL holds a full photo URL. Legacy rows stored a bare OpenLibrary
	// author OLID; the startup migration rewrites those into URLs.
	ImageURL string `gorm:"size:2048" json:"image_url,omitempty"`

	Books []Book `gorm:"many2many:book_authors;" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	Books     []Book    `gorm:"many2many:book_categories;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Language struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	Books     []Book    `gorm:"many2many:book_languages;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Collection struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"index" json:"user_id"`
	Name        string `gorm:"size:255" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	User  User   `gorm:"foreignKey:UserID" json:"-"`
	Books []Book `gorm:"many2many:collection_books;" json:"books,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string       { return "users" }
func (Book) TableName() string       { return "books" }
func (Author) TableName() string     { return "authors" }
func (Category) TableName() string   { return "categories" }
func (Language) TableName() string   { return "languages" }
func (Collection) TableName() string { return "collections" }
