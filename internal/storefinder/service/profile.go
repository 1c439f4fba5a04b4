package service

import "strings"

// AllowList is a set of lowercase keywords that identify a wanted kind of place.
type AllowList []string

// Matches reports whether any keyword occurs in the name or in one of the tags.
func (a AllowList) Matches(name string, tags []string) bool {
	lowerName := strings.ToLower(name)
	for _, keyword := range a {
		if strings.Contains(lowerName, keyword) {
			return true
		}
		for _, tag := range tags {
			if strings.Contains(strings.ToLower(tag), keyword) {
				return true
			}
		}
	}
	return false
}

// GroceryAllowList identifies shops that sell ingredients, including the
// large Kuwaiti chains whose names carry no category word.
var GroceryAllowList = AllowList{
	"supermarket",
	"hypermarket",
	"grocery",
	"market",
	"mart",
	"store",
	"coop",
	"co-op",
	"carrefour",
	"sultan",
	"lulu",
	"city centre",
	"city center",
	"saveco",
	"bakery",
	"butcher",
	"convenience",
}

// RestaurantAllowList identifies places that serve prepared food.
var RestaurantAllowList = AllowList{
	"restaurant",
	"cafe",
	"café",
	"coffee",
	"fast_food",
	"fast food",
	"food court",
	"bistro",
	"grill",
	"diner",
	"kitchen",
	"shawarma",
	"pizza",
	"burger",
}

// Profile selects what kind of place a lookup is for.
type Profile struct {
	Name string
	// Categories are sent to the suggest endpoint as poi_category.
	Categories []string
	AllowList  AllowList
}

var (
	GroceryProfile = Profile{
		Name:       "grocery",
		Categories: []string{"supermarket", "grocery", "hypermarket", "market", "food_and_drink", "food_and_beverage"},
		AllowList:  GroceryAllowList,
	}
	RestaurantProfile = Profile{
		Name:       "restaurant",
		Categories: []string{"restaurant", "cafe", "fast_food", "food_and_drink"},
		AllowList:  RestaurantAllowList,
	}
)

func (p Profile) isZero() bool {
	return p.Name == "" && len(p.Categories) == 0 && len(p.AllowList) == 0
}
