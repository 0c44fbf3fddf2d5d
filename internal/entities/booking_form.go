package entities

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// BookingForm is what the widget collects across its five steps.
type BookingForm struct {
	Fechas   Fechas       `json:"fechas"`
	Vehiculo Vehiculo     `json:"vehiculo"`
	Extras   FlexList     `json:"extras"`
	Datos    Datos        `json:"datos"`
	// Total calculado por el widget; informativo, el backend recalcula.
	Total FlexString `json:"total,omitempty"`
}

type Fechas struct {
	FechaRetiro      string   `json:"fechaRetiro"`
	FechaEntrega     string   `json:"fechaEntrega,omitempty"`
	HoraRetiro       string   `json:"horaRetiro"`
	HoraEntrega      string   `json:"horaEntrega,omitempty"`
	FechaDevolucion  string   `json:"fechaDevolucion"`
	HoraDevolucion   string   `json:"horaDevolucion"`
	Delivery         FlexBool `json:"delivery,omitempty"`
	DireccionEntrega string   `json:"direccionEntrega,omitempty"`
}

// UnmarshalJSON tolerates a non-object value or mistyped members, leaving
// them empty.
func (f *Fechas) UnmarshalJSON(data []byte) error {
	*f = Fechas{}
	decodeObject(data, map[string]any{
		"fechaRetiro":      &f.FechaRetiro,
		"fechaEntrega":     &f.FechaEntrega,
		"horaRetiro":       &f.HoraRetiro,
		"horaEntrega":      &f.HoraEntrega,
		"fechaDevolucion":  &f.FechaDevolucion,
		"horaDevolucion":   &f.HoraDevolucion,
		"delivery":         &f.Delivery,
		"direccionEntrega": &f.DireccionEntrega,
	})
	return nil
}

// PickupDate prefers fechaRetiro, falling back to fechaEntrega.
func (f Fechas) PickupDate() string {
	if f.FechaRetiro != "" {
		return f.FechaRetiro
	}
	return f.FechaEntrega
}

// PickupTime prefers horaEntrega, falling back to horaRetiro.
func (f Fechas) PickupTime() string {
	if f.HoraEntrega != "" {
		return f.HoraEntrega
	}
	return f.HoraRetiro
}

type Vehiculo struct {
	ID          FlexString `json:"id,omitempty"`
	Nombre      string     `json:"nombre,omitempty"`
	Precio      FlexString `json:"precio,omitempty"`
	Categoria   FlexString `json:"categoria,omitempty"`
	CategoriaID FlexString `json:"categoriaId,omitempty"`
}

// UnmarshalJSON accepts either the vehicle object or a bare vehicle id.
// Arrays and mistyped members decode to their zero value.
func (v *Vehiculo) UnmarshalJSON(data []byte) error {
	*v = Vehiculo{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' && trimmed[0] != '[' {
		return v.ID.UnmarshalJSON(trimmed)
	}
	decodeObject(trimmed, map[string]any{
		"id":          &v.ID,
		"nombre":      &v.Nombre,
		"precio":      &v.Precio,
		"categoria":   &v.Categoria,
		"categoriaId": &v.CategoriaID,
	})
	return nil
}

// CategoryID returns the selected category, preferring categoria over categoriaId.
func (v Vehiculo) CategoryID() string {
	if c := strings.TrimSpace(v.Categoria.String()); c != "" {
		return c
	}
	return strings.TrimSpace(v.CategoriaID.String())
}

type Datos struct {
	Nombre           string     `json:"nombre"`
	Email            string     `json:"email"`
	Telefono         FlexString `json:"telefono"`
	DNI              FlexString `json:"dni"`
	Nota             string     `json:"nota"`
	TieneTarjeta     FlexBool   `json:"tieneTarjeta"`
	Direccion        string     `json:"direccion,omitempty"`
	DireccionEntrega string     `json:"direccion_entrega,omitempty"`
}

func (d *Datos) UnmarshalJSON(data []byte) error {
	*d = Datos{}
	decodeObject(data, map[string]any{
		"nombre":            &d.Nombre,
		"email":             &d.Email,
		"telefono":          &d.Telefono,
		"dni":               &d.DNI,
		"nota":              &d.Nota,
		"tieneTarjeta":      &d.TieneTarjeta,
		"direccion":         &d.Direccion,
		"direccion_entrega": &d.DireccionEntrega,
	})
	return nil
}

// decodeObject fills fields from a JSON object one key at a time. A value of
// the wrong type leaves its field at the zero value; string fields also take
// numbers and booleans. Anything other than an object decodes to nothing.
func decodeObject(data []byte, fields map[string]any) {
	var raw map[string]json.RawMessage
	if json.Unmarshal(data, &raw) != nil {
		return
	}
	for key, dst := range fields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		switch d := dst.(type) {
		case *string:
			var s FlexString
			if s.UnmarshalJSON(value) == nil {
				*d = s.String()
			}
		default:
			_ = json.Unmarshal(value, dst)
		}
	}
}

// FlexString decodes JSON strings, numbers and booleans into their text form.
// null, objects and arrays decode to the empty string.
type FlexString string

func (s FlexString) String() string { return string(s) }

func (s *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*s = ""
	case trimmed[0] == '"':
		var str string
		if err := json.Unmarshal(trimmed, &str); err != nil {
			return err
		}
		*s = FlexString(str)
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err == nil {
			*s = FlexString(n.String())
			return nil
		}
		var b bool
		if json.Unmarshal(trimmed, &b) != nil {
			*s = ""
			return nil
		}
		*s = FlexString(strconv.FormatBool(b))
	}
	return nil
}

// FlexList decodes the extras selection: an array of ids, or a single id.
// Elements that are not scalars are skipped.
type FlexList []FlexString

func (l *FlexList) UnmarshalJSON(data []byte) error {
	*l = nil
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '{' {
		return nil
	}
	if trimmed[0] != '[' {
		var s FlexString
		_ = s.UnmarshalJSON(trimmed)
		if strings.TrimSpace(s.String()) != "" {
			*l = FlexList{s}
		}
		return nil
	}
	var items []json.RawMessage
	if json.Unmarshal(trimmed, &items) != nil {
		return nil
	}
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && (item[0] == '{' || item[0] == '[') {
			continue
		}
		var s FlexString
		_ = s.UnmarshalJSON(item)
		*l = append(*l, s)
	}
	return nil
}

// FlexBool records whether a flag was present and its truthiness.
type FlexBool struct {
	Set   bool
	Value bool
}

func (b FlexBool) MarshalJSON() ([]byte, error) {
	if !b.Set {
		return []byte("null"), nil
	}
	return json.Marshal(b.Value)
}

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	raw := strings.ToLower(strings.TrimSpace(s.String()))
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || (len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')) {
		*b = FlexBool{}
		return nil
	}
	switch raw {
	case "true", "1", "si", "sí", "yes":
		*b = FlexBool{Set: true, Value: true}
	default:
		*b = FlexBool{Set: true, Value: false}
	}
	return nil
}
