package models

// FoodsResponse is the body of GET /api/v0/foods.
type FoodsResponse struct {
	Foods []Food `json:"foods"`
}

// ErrorResponse is the body returned with any non-2xx API status.
type ErrorResponse struct {
	Error string `json:"error"`
}
