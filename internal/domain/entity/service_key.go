package entity

// ServiceKey servicio medido por contador, tal como lo identifica la captura diaria.
type ServiceKey string

const (
	ServiceColorCopies ServiceKey = "colorCopies"
	ServiceBWCopies    ServiceKey = "bwCopies"
	ServiceColorPrints ServiceKey = "colorPrints"
	ServiceBWPrints    ServiceKey = "bwPrints"
)

// serviceItemKeys tabla de correspondencia entre el servicio y la clave persistida en sale_records.
// La comparten el escritor del libro y el cargador; no se infiere nada por transformación de cadenas.
var serviceItemKeys = []struct {
	service ServiceKey
	item    string
}{
	{ServiceColorCopies, "copias_color"},
	{ServiceBWCopies, "copias_bn"},
	{ServiceColorPrints, "impresiones_color"},
	{ServiceBWPrints, "impresiones_bn"},
}

// ServiceKeys devuelve los servicios en orden estable.
func ServiceKeys() []ServiceKey {
	out := make([]ServiceKey, 0, len(serviceItemKeys))
	for _, e := range serviceItemKeys {
		out = append(out, e.service)
	}
	return out
}

// ItemKey clave persistida del servicio.
func (k ServiceKey) ItemKey() (string, bool) {
	for _, e := range serviceItemKeys {
		if e.service == k {
			return e.item, true
		}
	}
	return "", false
}

// Valid informa si el servicio está en la tabla.
func (k ServiceKey) Valid() bool {
	_, ok := k.ItemKey()
	return ok
}

// ServiceKeyFromItemKey inverso de ItemKey.
func ServiceKeyFromItemKey(item string) (ServiceKey, bool) {
	for _, e := range serviceItemKeys {
		if e.item == item {
			return e.service, true
		}
	}
	return "", false
}
