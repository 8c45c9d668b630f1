// seed_prices genera el script SQL con la lista de precios inicial de un negocio
// a partir de un CSV "kind,item_key,price[,is_active]" (UTF-8 o Windows-1252, como lo exporta Excel).
//
// Uso: go run ./cmd/seed_prices <business_id> [ruta/precios.csv]
// Por defecto lee precios.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_prices.sql
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

type priceRow struct {
	kind     entity.SaleKind
	itemKey  string
	price    decimal.Decimal
	isActive bool
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: seed_prices <business_id> [precios.csv]")
		os.Exit(2)
	}
	businessID := os.Args[1]
	if _, err := uuid.Parse(businessID); err != nil {
		fmt.Fprintf(os.Stderr, "business_id inválido: %v\n", err)
		os.Exit(2)
	}
	csvPath := "precios.csv"
	if len(os.Args) > 2 {
		csvPath = os.Args[2]
	}

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	rows, err := parsePrices(decodeText(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_prices.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, businessID, filepath.Base(csvPath), rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d precios\n", outPath, len(rows))
}

// decodeText devuelve el contenido en UTF-8; lo que no es UTF-8 válido se lee como Windows-1252.
func decodeText(raw []byte) io.Reader {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.Windows1252.NewDecoder())
}

// parsePrices lee las filas; la primera se ignora si es encabezado. Acepta "," o ";" como separador.
func parsePrices(r io.Reader) ([]priceRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if first, _, _ := bytes.Cut(data, []byte("\n")); bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		cr.Comma = ';'
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var rows []priceRow
	for i, rec := range records {
		line := i + 1
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "kind") {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("línea %d: se esperan al menos 3 columnas", line)
		}
		row := priceRow{
			kind:     entity.SaleKind(strings.ToLower(strings.TrimSpace(rec[0]))),
			itemKey:  strings.TrimSpace(rec[1]),
			isActive: true,
		}
		if !row.kind.Valid() {
			return nil, fmt.Errorf("línea %d: tipo desconocido %q", line, rec[0])
		}
		if row.itemKey == "" {
			return nil, fmt.Errorf("línea %d: item_key vacío", line)
		}
		if row.kind == entity.SaleKindService && !entity.ServiceKey(row.itemKey).Valid() {
			return nil, fmt.Errorf("línea %d: servicio desconocido %q", line, row.itemKey)
		}
		// Excel en español exporta "2,50".
		price, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[2]), ",", "."))
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("línea %d: precio inválido %q", line, rec[2])
		}
		row.price = price.Round(2)
		if len(rec) > 3 && strings.TrimSpace(rec[3]) != "" {
			active, err := strconv.ParseBool(strings.TrimSpace(rec[3]))
			if err != nil {
				return nil, fmt.Errorf("línea %d: is_active inválido %q", line, rec[3])
			}
			row.isActive = active
		}
		k := string(row.kind) + "|" + row.itemKey
		if seen[k] {
			return nil, fmt.Errorf("línea %d: %s %q repetido", line, row.kind, row.itemKey)
		}
		seen[k] = true
		rows = append(rows, row)
	}
	return rows, nil
}

func writeSQL(w io.Writer, businessID, source string, rows []priceRow) error {
	var b strings.Builder
	b.WriteString("-- Lista de precios inicial\n")
	fmt.Fprintf(&b, "-- Generado desde %s\n\n", source)
	if len(rows) == 0 {
		b.WriteString("-- (sin filas)\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	b.WriteString("INSERT INTO price_list (business_id, kind, item_key, price, is_active) VALUES\n")
	for i, r := range rows {
		sep := ","
		if i == len(rows)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  ('%s', '%s', '%s', %s, %t)%s\n",
			businessID, r.kind, escapeSQL(r.itemKey), r.price.StringFixed(2), r.isActive, sep)
	}
	b.WriteString("ON CONFLICT (business_id, kind, item_key) DO UPDATE\n")
	b.WriteString("  SET price = EXCLUDED.price, is_active = EXCLUDED.is_active, updated_at = now();\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
