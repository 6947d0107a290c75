package repository

import (
	"strings"

	"linecal/internal/log"
	"linecal/internal/model"
	"linecal/internal/storage"
)

// MaxTags caps the per-user tag list. The list is truncated to the first
// MaxTags entries on save, so tags added past the cap are the ones
// dropped (drop-newest).
const MaxTags = 50

// categoryData is the persisted unit: custom categories and tags travel
// together under one key.
type categoryData struct {
	CustomCategories []model.Category `json:"customCategories"`
	Tags             []string         `json:"tags"`
}

// CategoryRepository manages a user's custom categories and tags. The
// built-in category set is immutable and always present.
type CategoryRepository struct {
	store  storage.KV
	userID string
	data   categoryData
}

func NewCategoryRepository(store storage.KV, userID string) (*CategoryRepository, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	r := &CategoryRepository{store: store, userID: userID}
	err := store.Get(CategoriesKey(userID), &r.data)
	if err != nil && err != storage.ErrNotFound {
		return nil, &StorageError{Op: "load categories", Err: err}
	}
	if r.data.CustomCategories == nil {
		r.data.CustomCategories = []model.Category{}
	}
	if r.data.Tags == nil {
		r.data.Tags = []string{}
	}
	return r, nil
}

func (r *CategoryRepository) persist(op string) error {
	data := r.data
	if len(data.Tags) > MaxTags {
		data.Tags = data.Tags[:MaxTags]
		r.data.Tags = data.Tags
	}
	if err := r.store.Set(CategoriesKey(r.userID), data); err != nil {
		log.Error("persist categories failed", err, "user", r.userID)
		return &StorageError{Op: op, Err: err}
	}
	return nil
}

// All returns builtin categories followed by custom ones, builtins in
// declaration order.
func (r *CategoryRepository) All() []model.Category {
	out := make([]model.Category, 0, len(model.BuiltinCategories)+len(r.data.CustomCategories))
	out = append(out, model.BuiltinCategories...)
	out = append(out, r.data.CustomCategories...)
	return out
}

// Custom returns only the user-defined categories.
func (r *CategoryRepository) Custom() []model.Category {
	out := make([]model.Category, len(r.data.CustomCategories))
	copy(out, r.data.CustomCategories)
	return out
}

// ByID looks a category up in either set, falling back to "other".
func (r *CategoryRepository) ByID(id string) model.Category {
	for _, c := range r.All() {
		if c.ID == id {
			return c
		}
	}
	return model.FallbackCategory()
}

// AddCustom adds a user category. Returns false for invalid input or a
// duplicate id (including builtin ids).
func (r *CategoryRepository) AddCustom(c model.Category) (bool, error) {
	if c.ID == "" || c.Name == "" {
		return false, nil
	}
	if _, ok := model.BuiltinCategory(c.ID); ok {
		return false, nil
	}
	for _, existing := range r.data.CustomCategories {
		if existing.ID == c.ID {
			return false, nil
		}
	}
	if c.NameEn == "" {
		c.NameEn = c.Name
	}
	if c.Color == "" {
		c.Color = model.DefaultColor
	}
	if c.Icon == "" {
		c.Icon = "label-o"
	}
	r.data.CustomCategories = append(r.data.CustomCategories, c)
	return true, r.persist("add category")
}

// UpdateCustom merges non-empty fields over an existing custom category.
func (r *CategoryRepository) UpdateCustom(id string, upd model.Category) (bool, error) {
	for i := range r.data.CustomCategories {
		if r.data.CustomCategories[i].ID != id {
			continue
		}
		c := &r.data.CustomCategories[i]
		if upd.Name != "" {
			c.Name = upd.Name
		}
		if upd.NameEn != "" {
			c.NameEn = upd.NameEn
		}
		if upd.Color != "" {
			c.Color = upd.Color
		}
		if upd.Icon != "" {
			c.Icon = upd.Icon
		}
		return true, r.persist("update category")
	}
	return false, nil
}

// DeleteCustom removes a custom category. Builtins cannot be deleted.
func (r *CategoryRepository) DeleteCustom(id string) (bool, error) {
	for i := range r.data.CustomCategories {
		if r.data.CustomCategories[i].ID == id {
			r.data.CustomCategories = append(r.data.CustomCategories[:i], r.data.CustomCategories[i+1:]...)
			return true, r.persist("delete category")
		}
	}
	return false, nil
}

// Tags returns the user's tags.
func (r *CategoryRepository) Tags() []string {
	out := make([]string, len(r.data.Tags))
	copy(out, r.data.Tags)
	return out
}

// HasTag reports whether tag is present.
func (r *CategoryRepository) HasTag(tag string) bool {
	for _, t := range r.data.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag trims and appends a tag; empty and duplicate tags are rejected.
// Tags past the cap are dropped on save.
func (r *CategoryRepository) AddTag(tag string) (bool, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" || r.HasTag(tag) {
		return false, nil
	}
	r.data.Tags = append(r.data.Tags, tag)
	return true, r.persist("add tag")
}

// RemoveTag deletes a tag if present.
func (r *CategoryRepository) RemoveTag(tag string) (bool, error) {
	for i, t := range r.data.Tags {
		if t == tag {
			r.data.Tags = append(r.data.Tags[:i], r.data.Tags[i+1:]...)
			return true, r.persist("remove tag")
		}
	}
	return false, nil
}

// ClearTags removes every tag.
func (r *CategoryRepository) ClearTags() error {
	r.data.Tags = []string{}
	return r.persist("clear tags")
}

// ReplaceData overwrites both sets wholesale, used by import.
func (r *CategoryRepository) ReplaceData(custom []model.Category, tags []string) error {
	if custom == nil {
		custom = []model.Category{}
	}
	if tags == nil {
		tags = []string{}
	}
	r.data = categoryData{CustomCategories: custom, Tags: tags}
	return r.persist("replace categories")
}
