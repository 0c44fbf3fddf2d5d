package service

import (
	"net/url"
	"strings"
	"testing"

	"github.com/jrreynao/widgetamericanrent/internal/db"
	"github.com/jrreynao/widgetamericanrent/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAgency = "Av. de los Lagos 7008, B1670 Rincón de Milberg"

func testCatalog() *Catalog {
	return NewCatalog(&db.CatalogData{
		Categorias: []db.Category{
			{ID: "1", Nombre: "Chico"},
			{ID: "2", Nombre: "Mediano"},
			{ID: "9", Nombre: "Premium"},
		},
		Vehiculos: []db.Vehicle{
			{ID: "a", CategoriaID: "2", Nombre: "A", Precio: 50000, Imagen: "a.png"},
			{ID: "b", CategoriaID: "2", Nombre: "B", Precio: 45000, Imagen: "b.png"},
			{ID: "c", CategoriaID: "2", Nombre: "C", Precio: 45000, Imagen: "c.png"},
			{ID: "d", CategoriaID: "1", Nombre: "D", Precio: 30000, Imagen: "d.png"},
			{ID: "e", CategoriaID: "1", Nombre: "E", Precio: 30000, Imagen: "e.png"},
		},
		Extras: []db.Extra{
			{ID: "1", Name: "Llevar vehículo a mi dirección", Price: 15000},
			{ID: "2", Name: "Silla para bebé", Price: 5000},
			{ID: "x", Name: "GPS", Price: 3000},
		},
	}, "test")
}

func testDeriver() *Deriver {
	return NewDeriver(testCatalog(), DeriverConfig{
		BusinessWhatsApp: "5491126584086",
		AgencyAddress:    testAgency,
		AgencyMapURL:     "https://g.co/kgs/gj5UX3Z",
	}).WithOrderIDSource(func() int { return 4321 })
}

func baseForm() *entities.BookingForm {
	return &entities.BookingForm{
		Fechas: entities.Fechas{
			FechaRetiro:     "2024-01-01",
			HoraRetiro:      "10:00",
			FechaDevolucion: "2024-01-04",
			HoraDevolucion:  "18:00",
		},
		Vehiculo: entities.Vehiculo{Categoria: "2"},
		Datos: entities.Datos{
			Nombre:   "Ana Pérez",
			Email:    "ana@example.com",
			Telefono: "11 2345-6789",
			DNI:      "30111222",
		},
	}
}

func TestDeriveCategoryAndRange(t *testing.T) {
	tokens := testDeriver().Derive(baseForm())

	assert.Equal(t, "4321", tokens["booking_id"])
	assert.Equal(t, "Vehículo Mediano", tokens["service_name"])
	// Empate en el mínimo: gana el primero en orden de catálogo.
	assert.Equal(t, "b.png", tokens["service_image"])
	assert.Equal(t, "$45.000 - $50.000 / día", tokens["category_range"])
}

func TestDeriveSinglePriceWhenMinEqualsMax(t *testing.T) {
	form := baseForm()
	form.Vehiculo = entities.Vehiculo{Categoria: "1"}

	tokens := testDeriver().Derive(form)
	assert.Equal(t, "$30.000 / día", tokens["category_range"])
	assert.Equal(t, "d.png", tokens["service_image"])
}

func TestDeriveCategoryFallbacks(t *testing.T) {
	d := testDeriver()

	form := baseForm()
	form.Vehiculo = entities.Vehiculo{CategoriaID: "9"}
	tokens := d.Derive(form)
	assert.Equal(t, "Premium", tokens["service_name"])
	assert.Equal(t, "", tokens["category_range"])
	assert.Equal(t, "", tokens["service_image"])

	form.Vehiculo = entities.Vehiculo{Categoria: "77"}
	assert.Equal(t, "Categoría no especificada", d.Derive(form)["service_name"])

	// Un id de vehículo suelto resuelve su categoría.
	form.Vehiculo = entities.Vehiculo{ID: "a"}
	assert.Equal(t, "Vehículo Mediano", d.Derive(form)["service_name"])
}

func TestDeriveExtras(t *testing.T) {
	d := testDeriver()

	form := baseForm()
	form.Extras = []entities.FlexString{"2", "nope", "x"}
	tokens := d.Derive(form)
	assert.Equal(t, "Silla para bebé, GPS", tokens["service_extras"])
	assert.Contains(t, tokens["extras_list_block"], "Extras seleccionados")
	assert.Contains(t, tokens["extras_list_block"], "<b>GPS</b>")
	assert.NotContains(t, tokens["extras_list_block"], "nope")

	form.Extras = []entities.FlexString{"nope"}
	assert.Equal(t, "Sin extras", d.Derive(form)["service_extras"])

	form.Extras = nil
	tokens = d.Derive(form)
	assert.Equal(t, "Sin extras", tokens["service_extras"])
	assert.Equal(t, "", tokens["extras_list_block"])
}

func TestRentalDays(t *testing.T) {
	assert.Equal(t, 3, RentalDays("2024-01-01", "2024-01-04"))
	assert.Equal(t, 1, RentalDays("2024-01-01", "2024-01-01"))
	assert.Equal(t, 1, RentalDays("2024-01-05", "2024-01-01"))
	assert.Equal(t, 1, RentalDays("", "2024-01-04"))
	assert.Equal(t, 1, RentalDays("mañana", "pasado"))
	assert.Equal(t, 2, RentalDays("2024-03-30T10:00", "2024-04-01T09:00"))

	assert.Equal(t, "1 día", DurationText(1))
	assert.Equal(t, "3 días", DurationText(3))
}

func TestDeriveAmount(t *testing.T) {
	form := baseForm()
	form.Extras = []entities.FlexString{"2", "x"}

	tokens := testDeriver().Derive(form)
	// 45000 * 3 + 5000 + 3000
	assert.Equal(t, "$143.000", tokens["appointment_amount"])
	assert.Equal(t, "3 días", tokens["appointment_duration"])

	form.Vehiculo = entities.Vehiculo{Categoria: "77"}
	form.Extras = nil
	assert.Equal(t, "", testDeriver().Derive(form)["appointment_amount"])
}

func TestDeriveDeliveryAddress(t *testing.T) {
	d := testDeriver()

	form := baseForm()
	form.Extras = []entities.FlexString{"1"}
	form.Datos.DireccionEntrega = "Calle <Falsa> 123"
	tokens := d.Derive(form)

	assert.Equal(t, "Calle &lt;Falsa&gt; 123", tokens["text_direccionentrega"])
	assert.Equal(t, "<b>Dirección de entrega:</b> Calle &lt;Falsa&gt; 123", tokens["text_direccionentrega_admin"])
	assert.Contains(t, tokens["text_direccionentrega_block"], "Llevaremos el vehículo")
	assert.Contains(t, tokens["text_direccionentrega_block"], "<b>2024-01-01</b> a las <b>10:00</b>")
	assert.Equal(t, tokens["text_direccionentrega_block"], tokens["mensaje_entrega_cliente"])

	// Sin el extra de entrega la dirección se ignora.
	form.Extras = []entities.FlexString{"2"}
	tokens = d.Derive(form)
	assert.Equal(t, testAgency, tokens["text_direccionentrega"])
	assert.Equal(t, "<b>Retiro en sede:</b> "+testAgency, tokens["text_direccionentrega_admin"])
	assert.Contains(t, tokens["mensaje_entrega_cliente"], `href="https://g.co/kgs/gj5UX3Z"`)

	// Extra de entrega pero sin dirección: retiro en sede.
	form.Extras = []entities.FlexString{"1"}
	form.Datos.DireccionEntrega = "  "
	assert.Equal(t, testAgency, d.Derive(form)["text_direccionentrega"])
}

func TestDeriveDeliveryMatchesByName(t *testing.T) {
	cat := NewCatalog(&db.CatalogData{
		Extras: []db.Extra{{ID: "delivery", Name: "Llevar vehículo a mi dirección", Price: 1}},
	}, "test")
	d := NewDeriver(cat, DeriverConfig{AgencyAddress: testAgency})

	form := baseForm()
	form.Extras = []entities.FlexString{"delivery"}
	form.Fechas.DireccionEntrega = "Ruta 8 km 50"
	assert.Equal(t, "Ruta 8 km 50", d.Derive(form)["text_direccionentrega"])
}

func TestDeriveCustomerFields(t *testing.T) {
	form := baseForm()
	form.Datos.Nota = "<script>x</script>"
	form.Datos.TieneTarjeta = entities.FlexBool{Set: true, Value: true}
	form.Fechas.HoraEntrega = "11:00"
	form.Fechas.HoraDevolucion = "6 PM"

	tokens := testDeriver().Derive(form)
	assert.Equal(t, "Ana Pérez", tokens["customer_full_name"])
	assert.Equal(t, "+54 1123456789", tokens["customer_phone"])
	assert.Equal(t, "5491123456789", tokens["customer_whatsapp_link"])
	assert.Equal(t, "&lt;script&gt;x&lt;/script&gt;", tokens["customer_note"])
	assert.Equal(t, "Sí", tokens["tarjeta_credito"])
	assert.Equal(t, "11:00", tokens["hora_entregadevehiculo"])
	assert.Equal(t, "6 PM", tokens["hora_devolucionvehiculo"])

	form.Datos.TieneTarjeta = entities.FlexBool{}
	form.Fechas.HoraDevolucion = "18:00"
	tokens = testDeriver().Derive(form)
	assert.Equal(t, "", tokens["tarjeta_credito"])
	assert.Equal(t, "18:00 hs", tokens["hora_devolucionvehiculo"])
}

func TestDeriveWhatsAppLink(t *testing.T) {
	form := baseForm()
	form.Extras = []entities.FlexString{"2"}
	form.Datos.Nota = "Llego tarde"
	form.Datos.TieneTarjeta = entities.FlexBool{Set: true, Value: false}

	q := testDeriver().Build(form)
	link := q.Tokens["wa_contact_link"]
	require.True(t, strings.HasPrefix(link, "https://wa.me/5491126584086?text="))
	assert.NotContains(t, link, "+")
	assert.NotContains(t, link, " ")

	decoded, err := url.QueryUnescape(strings.TrimPrefix(link, "https://wa.me/5491126584086?text="))
	require.NoError(t, err)
	assert.Equal(t, q.WhatsAppText, decoded)

	lines := strings.Split(q.WhatsAppText, "\n")
	assert.Equal(t, "🧾 Solicitud de cotización", lines[0])
	assert.Equal(t, "Orden: 4321", lines[1])
	assert.Equal(t, "Teléfono: +54 1123456789", lines[4])
	assert.Equal(t, "Categoría: Vehículo Mediano", lines[6])
	assert.Contains(t, q.WhatsAppText, "Fechas: 2024-01-01 a 2024-01-04\nCantidad de días: 3 días\nExtras:\n- Silla para bebé: $5")
	assert.Contains(t, q.WhatsAppText, "Retiro en sede: "+testAgency)
	assert.Contains(t, q.WhatsAppText, "¿Posee tarjeta de crédito?: No\nNota del cliente: Llego tarde\n\nSolicito")
	assert.Equal(t, "Solicito la cotización final y confirmación de disponibilidad.", lines[len(lines)-1])
}

func TestDeriveWhatsAppWithoutExtras(t *testing.T) {
	q := testDeriver().Build(baseForm())
	assert.Contains(t, q.WhatsAppText, "Extras:\n- Sin extras\n")
	assert.NotContains(t, q.WhatsAppText, "Nota del cliente")
}

func TestEncodeURIComponent(t *testing.T) {
	assert.Equal(t, "a%20b%2Bc%0A%C3%B1", EncodeURIComponent("a b+c\nñ"))
	assert.Equal(t, "(ok)!*'~-_.", EncodeURIComponent("(ok)!*'~-_."))
}

func TestDeriveEmptyFormNeverPanics(t *testing.T) {
	d := NewDeriver(nil, DeriverConfig{})
	tokens := d.Derive(&entities.BookingForm{})
	assert.Equal(t, "Categoría no especificada", tokens["service_name"])
	assert.Equal(t, "1 día", tokens["appointment_duration"])
	assert.Equal(t, "", tokens["customer_whatsapp_link"])

	assert.NotPanics(t, func() { d.Derive(nil) })
}

func TestDeriveDefaultOrderIDRange(t *testing.T) {
	d := NewDeriver(testCatalog(), DeriverConfig{})
	for i := 0; i < 50; i++ {
		q := d.Build(baseForm())
		assert.GreaterOrEqual(t, q.OrderID, 0)
		assert.Less(t, q.OrderID, 1_000_000)
	}
}
