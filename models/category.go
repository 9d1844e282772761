package models

import "gorm.io/gorm"

// A node in the category tree. ParentID nil = root. Children are not
// stored; the tree is walked upward via parent references only.
type Category struct {
	gorm.Model
	Name     string `gorm:"not null"`
	ParentID *uint  `gorm:"index"`
}
