// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package fields

// Placeholders shown when an attribute resolves to "".
const (
	Unavailable = "Non disponible"
	DefaultName = "Professionnel"
)

// Card is the display form of a professional with placeholders applied.
type Card struct {
	Civility   string `json:"civility"`
	Name       string `json:"name"`
	Profession string `json:"profession"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Commune    string `json:"commune"`
}

// Card resolves every display attribute of props.
func (r *Resolver) Card(props map[string]interface{}) Card {
	return Card{
		Civility:   r.Resolve(props, Civility),
		Name:       orDefault(r.Resolve(props, FullName), DefaultName),
		Profession: orDefault(r.Resolve(props, Profession), Unavailable),
		Phone:      orDefault(r.Resolve(props, Phone), Unavailable),
		Address:    orDefault(r.Resolve(props, Address), Unavailable),
		Commune:    r.Resolve(props, Commune),
	}
}

// DisplayCard uses the Default resolver.
func DisplayCard(props map[string]interface{}) Card {
	return Default.Card(props)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
