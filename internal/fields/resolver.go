// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

// Package fields normalizes the attribute names found on professional records.
//
// The source dataset was assembled from several exports, so the same logical
// attribute appears under different keys ("Profession", "profession",
// "libelle_profession"). A Resolver looks up the canonical key first, then each
// alternate in order, and returns the first value whose string form is not
// blank. It never fails: a missing attribute resolves to "".
package fields

import (
	"fmt"
	"strconv"
	"strings"
)

// Field is a logical attribute of a professional record.
type Field string

const (
	Civility   Field = "civility"
	Phone      Field = "phone"
	FullName   Field = "full_name"
	Address    Field = "address"
	Profession Field = "profession"
	Commune    Field = "commune"
)

// Resolver maps logical fields to ordered attribute keys.
// The zero value resolves nothing; use Default or NewResolver.
type Resolver struct {
	keys map[Field][]string
}

// defaultKeys holds canonical key first, alternates after.
var defaultKeys = map[Field][]string{
	Civility:   {"Civilité", "Civilite", "civilite"},
	Phone:      {"Numéro de téléphone", "Numero_de_telephone", "Numero.de.telephone", "telephone"},
	FullName:   {"Nom du professionnel", "Nom_du_professionnel", "Nom.du.professionnel", "nom"},
	Address:    {"Adresse", "adresse", "Adresse_postale"},
	Profession: {"Profession", "profession", "libelle_profession"},
	Commune:    {"Commune", "commune"},
}

// Default is the resolver for the shipped dataset layout.
var Default = NewResolver(defaultKeys)

// NewResolver copies keys so later changes to the map do not leak in.
func NewResolver(keys map[Field][]string) *Resolver {
	r := &Resolver{keys: make(map[Field][]string, len(keys))}
	for f, ks := range keys {
		r.keys[f] = append([]string(nil), ks...)
	}
	return r
}

// Resolve returns the first non-blank value for f in props. A nil map, an
// unknown field or no usable key all give "". The value is returned as stored,
// without trimming.
func (r *Resolver) Resolve(props map[string]interface{}, f Field) string {
	if props == nil || r == nil {
		return ""
	}
	for _, key := range r.keys[f] {
		v, ok := props[key]
		if !ok || v == nil {
			continue
		}
		s := stringify(v)
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// Resolve uses the Default resolver.
func Resolve(props map[string]interface{}, f Field) string {
	return Default.Resolve(props, f)
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
