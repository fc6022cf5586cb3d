package models

// MetaData is a named reference vocabulary (pain types, injury areas)
// served to the intake form.
type MetaData struct {
	ID       int      `json:"id"`
	DataName string   `json:"data_name"`
	Data     []string `json:"data"`
}
