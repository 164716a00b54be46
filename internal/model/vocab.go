// internal/model/vocab.go
package model

// VocabularyItem is one entry of the external catalogue. The engine treats
// the catalogue as read-only; loading and fallback behavior live elsewhere.
type VocabularyItem struct {
	ID          string `json:"id"`
	Word        string `json:"word"`        // Bulgarian side
	Translation string `json:"translation"` // German side
	Category    string `json:"category,omitempty"`
	Level       string `json:"level,omitempty"` // CEFR label, e.g. "A1"
	Notes       string `json:"notes,omitempty"`
	NotesBGDE   string `json:"notes_bg_to_de,omitempty"`
	NotesDEBG   string `json:"notes_de_to_bg,omitempty"`
}

// Card is a vocabulary item oriented for one practice direction.
type Card struct {
	ItemID string `json:"item_id"`
	Front  string `json:"front"`
	Back   string `json:"back"`
	Notes  string `json:"notes,omitempty"`
	Level  string `json:"level,omitempty"`
}
