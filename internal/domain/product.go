package domain

type Product struct {
	ID    string  `json:"_id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}
