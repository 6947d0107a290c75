package model

// Category labels schedules by area (work, health, study, etc.).
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	NameEn string `json:"nameEn"`
	Color  string `json:"color"`
	Icon   string `json:"icon"`
}

// FallbackCategoryID is returned by lookups for unknown category ids.
const FallbackCategoryID = "other"

// BuiltinCategories is the fixed, always-present category set, in
// declaration order. User-defined categories are appended after these.
var BuiltinCategories = []Category{
	{ID: "work", Name: "仕事", NameEn: "Work", Color: "#FF6B6B", Icon: "briefcase-o"},
	{ID: "personal", Name: "個人", NameEn: "Personal", Color: "#4ECDC4", Icon: "user-o"},
	{ID: "health", Name: "健康", NameEn: "Health", Color: "#95E1D3", Icon: "medkit-o"},
	{ID: "study", Name: "学習", NameEn: "Study", Color: "#FFE66D", Icon: "book-o"},
	{ID: "entertainment", Name: "娯楽", NameEn: "Entertainment", Color: "#C7CEEA", Icon: "smile-o"},
	{ID: "other", Name: "その他", NameEn: "Other", Color: "#B0B0B0", Icon: "ellipsis"},
}

// BuiltinCategory returns the builtin with the given id, if any.
func BuiltinCategory(id string) (Category, bool) {
	for _, c := range BuiltinCategories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// FallbackCategory returns the catch-all "other" category.
func FallbackCategory() Category {
	c, _ := BuiltinCategory(FallbackCategoryID)
	return c
}
