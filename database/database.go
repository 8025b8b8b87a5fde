package database

import (
	"gorm.io/gorm"
)

type Database struct {
	promptRepo         *PromptRepo
	tagRepo            *TagRepo
	attachedPromptRepo *AttachedPromptRepo
	favoriteSetRepo    *FavoriteSetRepo
	userRepo           *UserRepo
	allowlistRepo      *AllowlistRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		promptRepo:         NewPromptRepo(db),
		tagRepo:            NewTagRepo(db),
		attachedPromptRepo: NewAttachedPromptRepo(db),
		favoriteSetRepo:    NewFavoriteSetRepo(db),
		userRepo:           NewUserRepo(db),
		allowlistRepo:      NewAllowlistRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) PromptRepo() *PromptRepo {
	return d.promptRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) AttachedPromptRepo() *AttachedPromptRepo {
	return d.attachedPromptRepo
}

func (d Database) FavoriteSetRepo() *FavoriteSetRepo {
	return d.favoriteSetRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) AllowlistRepo() *AllowlistRepo {
	return d.allowlistRepo
}
