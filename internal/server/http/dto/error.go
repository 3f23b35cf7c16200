package dto

// ShortfallResponse is the stock deficit of one product.
type ShortfallResponse struct {
	ProductID int64 `json:"product_id"`
	Requested int   `json:"requested"`
	Available int   `json:"available"`
}

// StaleLineResponse is a captured price that no longer matches the catalog.
type StaleLineResponse struct {
	ProductID int64  `json:"product_id"`
	Captured  string `json:"captured"`
	Current   string `json:"current"`
}

// ErrorResponse is the body of a rejected request.
type ErrorResponse struct {
	Error      string              `json:"error"`
	Shortfalls []ShortfallResponse `json:"shortfalls,omitempty"`
	StaleLines []StaleLineResponse `json:"stale_lines,omitempty"`
	Fields     []string            `json:"fields,omitempty"`
	From       string              `json:"from,omitempty"`
	To         string              `json:"to,omitempty"`
	Stage      string              `json:"stage,omitempty"`
}
