package printful

type Recipient struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	StateCode   string `json:"state_code"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
}

type orderRequest struct {
	ExternalID  string      `json:"external_id"`
	Recipient   Recipient   `json:"recipient"`
	Items       []orderItem `json:"items"`
	Shipping    string      `json:"shipping"`
	PackingSlip packingSlip `json:"packing_slip"`
}

type orderItem struct {
	VariantID   int    `json:"variant_id"`
	Quantity    int    `json:"quantity"`
	RetailPrice string `json:"retail_price"`
}

type packingSlip struct {
	Message string `json:"message"`
}

type orderResponse struct {
	Code   int `json:"code"`
	Result struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	} `json:"result"`
}

type errorResponse struct {
	Code  int `json:"code"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
