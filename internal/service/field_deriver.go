package service

import (
	"fmt"
	"html"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/jrreynao/widgetamericanrent/internal/db"
	"github.com/jrreynao/widgetamericanrent/internal/entities"
	"github.com/jrreynao/widgetamericanrent/internal/utils"
)

const (
	deliveryExtraID   = "1"
	deliveryExtraName = "Llevar vehículo a mi dirección"
	noExtrasLabel     = "Sin extras"
)

// DeriverConfig carries the business constants the tokens depend on.
type DeriverConfig struct {
	BusinessWhatsApp string // sólo dígitos
	AgencyAddress    string
	AgencyMapURL     string
}

// Deriver turns a booking form into the token map used by both emails.
// Every field degrades to a default; Derive never fails.
type Deriver struct {
	catalog    *Catalog
	cfg        DeriverConfig
	newOrderID func() int
}

func NewDeriver(catalog *Catalog, cfg DeriverConfig) *Deriver {
	if catalog == nil {
		catalog = NewCatalog(nil, "")
	}
	return &Deriver{
		catalog:    catalog,
		cfg:        cfg,
		newOrderID: func() int { return rand.Intn(1_000_000) },
	}
}

// WithOrderIDSource replaces the random order id generator.
func (d *Deriver) WithOrderIDSource(fn func() int) *Deriver {
	d.newOrderID = fn
	return d
}

// Quote is everything derived from one form.
type Quote struct {
	OrderID int
	Tokens  TokenMap
	// WhatsAppText is the plain summary before URL encoding.
	WhatsAppText string
}

func (d *Deriver) Derive(form *entities.BookingForm) TokenMap {
	return d.Build(form).Tokens
}

func (d *Deriver) Build(form *entities.BookingForm) Quote {
	if form == nil {
		form = &entities.BookingForm{}
	}
	orderID := d.newOrderID()

	name := strings.TrimSpace(form.Datos.Nombre)
	email := strings.TrimSpace(form.Datos.Email)
	dni := strings.TrimSpace(form.Datos.DNI.String())
	note := strings.TrimSpace(form.Datos.Nota)
	phone := DisplayPhone(form.Datos.Telefono.String())

	categoryID := d.resolveCategoryID(form.Vehiculo)
	categoryName := d.categoryName(categoryID)
	vehicles := d.catalog.VehiclesInCategory(categoryID)
	minPrice, maxPrice, representative := priceRange(vehicles)
	categoryRange := FormatRange(minPrice, maxPrice)

	extras := d.resolveExtras(form.Extras)
	serviceExtras := noExtrasLabel
	if len(extras) > 0 {
		names := make([]string, len(extras))
		for i, e := range extras {
			names[i] = e.Name
		}
		serviceExtras = strings.Join(names, ", ")
	}

	pickupDate := form.Fechas.PickupDate()
	returnDate := form.Fechas.FechaDevolucion
	pickupTime := form.Fechas.PickupTime()
	days := RentalDays(pickupDate, returnDate)
	duration := DurationText(days)

	var extrasTotal int64
	for _, e := range extras {
		extrasTotal += e.Price
	}
	amount := ""
	if total := minPrice*int64(days) + extrasTotal; total != 0 {
		amount = FormatARS(total)
	}

	deliveryAddr := ""
	if hasDeliveryExtra(extras) {
		deliveryAddr = deliveryAddress(form)
	}
	agency := d.cfg.AgencyAddress
	delivering := deliveryAddr != ""
	addrHTML := html.EscapeString(deliveryAddr)
	agencyHTML := html.EscapeString(agency)

	textDireccion := agency
	var block, adminLine, customerMsg string
	if delivering {
		textDireccion = deliveryAddr
		block = fmt.Sprintf("Llevaremos el vehículo a la dirección que indicaste (<b>%s</b>) el día <b>%s</b> a las <b>%s</b>. Si tienes alguna duda o necesitas modificar la dirección, contáctanos.",
			addrHTML, html.EscapeString(pickupDate), html.EscapeString(pickupTime))
		adminLine = "<b>Dirección de entrega:</b> " + addrHTML
		customerMsg = block
	} else {
		block = fmt.Sprintf("Deberás retirar tu vehículo en nuestra agencia. Te esperamos en <b>%s</b> a la hora acordada.", agencyHTML)
		adminLine = "<b>Retiro en sede:</b> " + agencyHTML
		customerMsg = fmt.Sprintf(`Deberás retirar tu vehículo en nuestra agencia. Te esperamos en <a href="%s" style="color:#2563eb;text-decoration:none;font-weight:500" target="_blank">%s</a> a la hora acordada.`,
			html.EscapeString(d.cfg.AgencyMapURL), agencyHTML)
	}

	tarjeta := ""
	if form.Datos.TieneTarjeta.Set {
		tarjeta = "No"
		if form.Datos.TieneTarjeta.Value {
			tarjeta = "Sí"
		}
	}

	summary := whatsAppSummary(summaryFields{
		orderID:       orderID,
		name:          name,
		email:         email,
		phone:         phone,
		dni:           dni,
		category:      categoryName,
		categoryRange: categoryRange,
		pickupDate:    pickupDate,
		returnDate:    returnDate,
		duration:      duration,
		anyExtras:     len(form.Extras) > 0,
		extras:        extras,
		deliveryAddr:  deliveryAddr,
		agency:        agency,
		amount:        amount,
		tarjeta:       tarjeta,
		note:          note,
	})
	encoded := EncodeURIComponent(summary)

	image := ""
	if representative != nil {
		image = representative.Imagen
	}

	tokens := TokenMap{
		"booking_id":                  strconv.Itoa(orderID),
		"customer_full_name":          html.EscapeString(name),
		"customer_email":              html.EscapeString(email),
		"customer_phone":              phone,
		"dni_number":                  html.EscapeString(dni),
		"customer_note":               html.EscapeString(note),
		"service_name":                html.EscapeString(categoryName),
		"service_image":               html.EscapeString(image),
		"service_extras":              html.EscapeString(serviceExtras),
		"category_range":              categoryRange,
		"appointment_date":            html.EscapeString(pickupDate),
		"fechadev":                    html.EscapeString(returnDate),
		"hora_entregadevehiculo":      html.EscapeString(pickupTime),
		"hora_devolucionvehiculo":     html.EscapeString(ReturnTimeText(form.Fechas.HoraDevolucion)),
		"appointment_duration":        duration,
		"appointment_amount":          amount,
		"text_direccionentrega":       html.EscapeString(textDireccion),
		"text_direccionentrega_block": block,
		"text_direccionentrega_admin": adminLine,
		"mensaje_entrega_cliente":     customerMsg,
		"tarjeta_credito":             tarjeta,
		"customer_whatsapp_link":      WhatsAppPhone(form.Datos.Telefono.String()),
		"whatsapp_factura":            encoded,
		"wa_contact_link":             "https://wa.me/" + d.cfg.BusinessWhatsApp + "?text=" + encoded,
		"extras_list_block":           extrasListBlock(extras, len(form.Extras) > 0),
	}

	return Quote{OrderID: orderID, Tokens: tokens, WhatsAppText: summary}
}

// resolveCategoryID accepts categoria/categoriaId, or a vehicle or category id
// sent as the bare vehiculo value.
func (d *Deriver) resolveCategoryID(v entities.Vehiculo) string {
	if id := v.CategoryID(); id != "" {
		return id
	}
	id := strings.TrimSpace(v.ID.String())
	if veh, ok := d.catalog.Vehicle(id); ok {
		return veh.CategoriaID
	}
	if _, ok := d.catalog.Category(id); ok {
		return id
	}
	if utils.CategoryLabel(id) != "" {
		return id
	}
	return ""
}

func (d *Deriver) categoryName(id string) string {
	if label := utils.CategoryLabel(id); label != "" {
		return label
	}
	if cat, ok := d.catalog.Category(id); ok && cat.Nombre != "" {
		return cat.Nombre
	}
	return utils.UnknownCategoryLabel
}

// resolveExtras keeps form order and duplicates; unknown ids are dropped.
func (d *Deriver) resolveExtras(ids []entities.FlexString) []db.Extra {
	var out []db.Extra
	for _, id := range ids {
		if e, ok := d.catalog.Extra(id.String()); ok {
			out = append(out, e)
		}
	}
	return out
}

// priceRange returns min and max price and the first vehicle at the minimum.
func priceRange(vehicles []db.Vehicle) (int64, int64, *db.Vehicle) {
	if len(vehicles) == 0 {
		return 0, 0, nil
	}
	minIdx := 0
	maxPrice := vehicles[0].Precio
	for i, v := range vehicles {
		if v.Precio < vehicles[minIdx].Precio {
			minIdx = i
		}
		if v.Precio > maxPrice {
			maxPrice = v.Precio
		}
	}
	rep := vehicles[minIdx]
	return rep.Precio, maxPrice, &rep
}

func hasDeliveryExtra(extras []db.Extra) bool {
	for _, e := range extras {
		if e.ID == deliveryExtraID || e.Name == deliveryExtraName {
			return true
		}
	}
	return false
}

func deliveryAddress(form *entities.BookingForm) string {
	for _, v := range []string{form.Datos.Direccion, form.Datos.DireccionEntrega, form.Fechas.DireccionEntrega} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"02/01/2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RentalDays is the rounded day count between pickup and return, at least 1.
// Missing or unreadable dates count as one day.
func RentalDays(pickup, ret string) int {
	from, ok1 := parseDate(pickup)
	to, ok2 := parseDate(ret)
	if !ok1 || !ok2 {
		return 1
	}
	days := int(math.Round(to.Sub(from).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

func DurationText(days int) string {
	if days == 1 {
		return "1 día"
	}
	return strconv.Itoa(days) + " días"
}

// ReturnTimeText appends " hs" unless the time already says am/pm.
func ReturnTimeText(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	lower := strings.ToLower(t)
	if strings.Contains(lower, "am") || strings.Contains(lower, "pm") {
		return t
	}
	return t + " hs"
}

type summaryFields struct {
	orderID       int
	name          string
	email         string
	phone         string
	dni           string
	category      string
	categoryRange string
	pickupDate    string
	returnDate    string
	duration      string
	anyExtras     bool
	extras        []db.Extra
	deliveryAddr  string
	agency        string
	amount        string
	tarjeta       string
	note          string
}

func whatsAppSummary(f summaryFields) string {
	lines := []string{
		"🧾 Solicitud de cotización",
		fmt.Sprintf("Orden: %d", f.orderID),
		"Nombre: " + f.name,
		"Email: " + f.email,
		"Teléfono: " + f.phone,
		"DNI/Pasaporte: " + f.dni,
		"Categoría: " + f.category,
	}
	if f.categoryRange != "" {
		lines = append(lines, "Rango de precios: "+f.categoryRange)
	}
	lines = append(lines,
		fmt.Sprintf("Fechas: %s a %s", f.pickupDate, f.returnDate),
		"Cantidad de días: "+f.duration,
		"Extras:",
	)
	if f.anyExtras {
		for _, e := range f.extras {
			lines = append(lines, fmt.Sprintf("- %s: %s", e.Name, FormatARS(e.Price)))
		}
	} else {
		lines = append(lines, "- "+noExtrasLabel)
	}
	if f.deliveryAddr != "" {
		lines = append(lines, "Dirección de entrega: "+f.deliveryAddr)
	} else {
		lines = append(lines, "Retiro en sede: "+f.agency)
	}
	if f.amount != "" {
		lines = append(lines, "Total aproximado: "+f.amount)
	}
	lines = append(lines, "¿Posee tarjeta de crédito?: "+f.tarjeta)
	if f.note != "" {
		lines = append(lines, "Nota del cliente: "+f.note)
	}
	lines = append(lines, "", "Solicito la cotización final y confirmación de disponibilidad.")
	return strings.Join(lines, "\n")
}

// EncodeURIComponent percent-encodes s the way browsers encode a query value:
// spaces become %20 and A-Z a-z 0-9 - _ . ! ~ * ' ( ) stay literal.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if uriUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func uriUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

func extrasListBlock(extras []db.Extra, anySelected bool) string {
	if !anySelected {
		return ""
	}
	var rows strings.Builder
	for _, e := range extras {
		fmt.Fprintf(&rows,
			`<tr><td style="padding:3px 0;border-bottom:1px dashed #e5e7eb;"><b>%s</b></td><td style="padding:3px 0;text-align:right;border-bottom:1px dashed #e5e7eb;">%s</td></tr>`,
			html.EscapeString(e.Name), FormatARS(e.Price))
	}
	return `<table style="width:100%;border:1px solid #e5e7eb;border-radius:10px;margin:0 0 16px 0;color:#334155;font-size:1em">` +
		`<tr><td colspan="2" style="padding:10px 12px;font-weight:700">Extras seleccionados</td></tr>` +
		rows.String() +
		`</table>`
}
