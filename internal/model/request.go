package model

// CreateEntryRequest carries only the client-controlled entry fields. Author
// fields in the body are never decoded.
type CreateEntryRequest struct {
	Entry      string   `json:"entry"`
	Type       string   `json:"type"`
	Categories []string `json:"categories"`
	Variation  []string `json:"variation"`
}

type CreateEntryResponse struct {
	Message string `json:"message"`
	EntryID string `json:"entryId"`
}

type AddWhitelistRequest struct {
	Username string `json:"username"`
}
