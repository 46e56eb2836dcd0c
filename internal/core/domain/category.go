package domain

import "time"

const DefaultCategoryColor = "#007bff"

// Category is shared by every user. Categories are only ever added.
type Category struct {
	ID          uint
	Name        string
	Description string
	Color       string
	CreatedAt   time.Time
}

// DefaultCategories is the catalogue seeded into an empty database.
var DefaultCategories = []Category{
	{Name: "Food & Dining", Description: "Restaurants, groceries, and food delivery", Color: "#ff6b6b"},
	{Name: "Transportation", Description: "Gas, public transport, ride sharing", Color: "#4ecdc4"},
	{Name: "Shopping", Description: "Clothing, electronics, personal items", Color: "#45b7d1"},
	{Name: "Entertainment", Description: "Movies, games, hobbies, and fun activities", Color: "#96ceb4"},
	{Name: "Bills & Utilities", Description: "Electricity, water, internet, phone", Color: "#feca57"},
	{Name: "Healthcare", Description: "Medical, dental, pharmacy expenses", Color: "#ff9ff3"},
	{Name: "Education", Description: "Books, courses, school supplies", Color: "#a8e6cf"},
	{Name: "Travel", Description: "Vacation, business trips, accommodation", Color: "#fd79a8"},
	{Name: "Home & Garden", Description: "Furniture, repairs, gardening supplies", Color: "#fdcb6e"},
	{Name: "Other", Description: "Miscellaneous expenses", Color: "#6c5ce7"},
}
