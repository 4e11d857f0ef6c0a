package entity

// Item is a catalog entry as exposed by the upstream API.
type Item struct {
	ID          string
	Name        string
	Price       float64
	ImageURL    string
	Description string
}
